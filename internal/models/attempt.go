// Package models defines the data structures for the portfolio intelligence engine.
package models

import (
	"strings"
	"time"
)

// AttemptType represents the kind of collection attempt.
type AttemptType string

const (
	AttemptTypeInitial  AttemptType = "initial"
	AttemptTypeRetry    AttemptType = "retry"
	AttemptTypeExternal AttemptType = "external"
)

// AttemptStatus represents the outcome of a collection attempt.
type AttemptStatus string

const (
	AttemptStatusCompleted AttemptStatus = "completed"
	AttemptStatusFailed    AttemptStatus = "failed"
	AttemptStatusPending   AttemptStatus = "pending"
)

// IsValid checks if the attempt type is one of the defined values.
func (t AttemptType) IsValid() bool {
	switch t {
	case AttemptTypeInitial, AttemptTypeRetry, AttemptTypeExternal:
		return true
	}
	return false
}

// IsValid checks if the attempt status is one of the defined values.
func (s AttemptStatus) IsValid() bool {
	switch s {
	case AttemptStatusCompleted, AttemptStatusFailed, AttemptStatusPending:
		return true
	}
	return false
}

// NormalizeAttemptType converts source spellings of the attempt type to
// standard values. Unmapped values pass through lowercased so validation
// can reject them.
func NormalizeAttemptType(raw string) AttemptType {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	typeMap := map[string]AttemptType{
		"initial":          AttemptTypeInitial,
		"first":            AttemptTypeInitial,
		"checkout":         AttemptTypeInitial,
		"initial_payment":  AttemptTypeInitial,
		"retry":            AttemptTypeRetry,
		"reattempt":        AttemptTypeRetry,
		"re_attempt":       AttemptTypeRetry,
		"collection":       AttemptTypeRetry,
		"auto_retry":       AttemptTypeRetry,
		"external":         AttemptTypeExternal,
		"agency":           AttemptTypeExternal,
		"debt_collection":  AttemptTypeExternal,
		"external_agency":  AttemptTypeExternal,
		"manual_follow_up": AttemptTypeExternal,
	}

	if mapped, ok := typeMap[normalized]; ok {
		return mapped
	}
	return AttemptType(normalized)
}

// NormalizeAttemptStatus converts source spellings of the attempt status to
// standard values.
func NormalizeAttemptStatus(raw string) AttemptStatus {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	statusMap := map[string]AttemptStatus{
		"completed":  AttemptStatusCompleted,
		"complete":   AttemptStatusCompleted,
		"success":    AttemptStatusCompleted,
		"succeeded":  AttemptStatusCompleted,
		"settled":    AttemptStatusCompleted,
		"paid":       AttemptStatusCompleted,
		"captured":   AttemptStatusCompleted,
		"failed":     AttemptStatusFailed,
		"failure":    AttemptStatusFailed,
		"declined":   AttemptStatusFailed,
		"rejected":   AttemptStatusFailed,
		"error":      AttemptStatusFailed,
		"pending":    AttemptStatusPending,
		"scheduled":  AttemptStatusPending,
		"processing": AttemptStatusPending,
		"in_flight":  AttemptStatusPending,
	}

	if mapped, ok := statusMap[normalized]; ok {
		return mapped
	}
	return AttemptStatus(normalized)
}

// CollectionAttempt is one attempt to charge a consumer for a due instalment.
// Immutable source fact.
type CollectionAttempt struct {
	ID           string        `json:"id"`
	InstalmentID string        `json:"instalment_id"`
	Type         AttemptType   `json:"type"`
	Status       AttemptStatus `json:"status"`
	ExecutedAt   *time.Time    `json:"executed_at,omitempty"`
}

// AttemptSequence is the ordered repayment-attempt history of one instalment
// within an analysis window. Built fresh per computation; never persisted.
type AttemptSequence struct {
	InstalmentID          string              `json:"instalment_id"`
	PlanID                string              `json:"plan_id"`
	ConsumerID            string              `json:"consumer_id"`
	MerchantName          string              `json:"merchant_name"`
	Amount                float64             `json:"amount"`
	Attempts              []CollectionAttempt `json:"attempts"`
	FirstAttemptSucceeded bool                `json:"first_attempt_succeeded"`
	AttemptCount          int                 `json:"attempt_count"`
}
