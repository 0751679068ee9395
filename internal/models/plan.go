// Package models defines the data structures for the portfolio intelligence engine.
package models

import (
	"strings"
	"time"
)

// PlanStatus represents the lifecycle state of an instalment plan.
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusDefaulted PlanStatus = "defaulted"
	PlanStatusCancelled PlanStatus = "cancelled"
)

// NormalizePlanStatus converts source spellings of the plan status to
// standard values.
func NormalizePlanStatus(raw string) PlanStatus {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	statusMap := map[string]PlanStatus{
		"active":      PlanStatusActive,
		"open":        PlanStatusActive,
		"in_progress": PlanStatusActive,
		"current":     PlanStatusActive,
		"completed":   PlanStatusCompleted,
		"complete":    PlanStatusCompleted,
		"closed":      PlanStatusCompleted,
		"settled":     PlanStatusCompleted,
		"paid_off":    PlanStatusCompleted,
		"defaulted":   PlanStatusDefaulted,
		"default":     PlanStatusDefaulted,
		"written_off": PlanStatusDefaulted,
		"charged_off": PlanStatusDefaulted,
		"cancelled":   PlanStatusCancelled,
		"canceled":    PlanStatusCancelled,
		"voided":      PlanStatusCancelled,
		"refunded":    PlanStatusCancelled,
	}

	if mapped, ok := statusMap[normalized]; ok {
		return mapped
	}
	return PlanStatus(normalized)
}

// Instalment is one scheduled repayment of an instalment plan.
type Instalment struct {
	ID      string    `json:"id"`
	PlanID  string    `json:"plan_id"`
	DueDate time.Time `json:"due_date"`
	Amount  float64   `json:"amount"`
}

// InstalmentPlan is a BNPL credit agreement owning one or more instalments.
type InstalmentPlan struct {
	ID           string     `json:"id"`
	ConsumerID   string     `json:"consumer_id"`
	MerchantName string     `json:"merchant_name"`
	CreatedAt    time.Time  `json:"created_at"`
	Status       PlanStatus `json:"status"`
	TotalAmount  float64    `json:"total_amount"`
}

// Window is a half-open analysis period [From, To].
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Normalize swaps inverted bounds so From is never after To.
func (w Window) Normalize() Window {
	if w.From.After(w.To) {
		return Window{From: w.To, To: w.From}
	}
	return w
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}
