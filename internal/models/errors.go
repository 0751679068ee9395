// Package models defines the data structures for the portfolio intelligence engine.
package models

import "errors"

// Common errors
var (
	ErrUnknownMarket        = errors.New("unknown benchmark market")
	ErrInvalidProviderCount = errors.New("benchmark provider count must be at least 1")
	ErrSourceUnavailable    = errors.New("data source unavailable")
)

// SkipReason categorizes why a metric was left out of a report.
type SkipReason string

const (
	SkipMissingCapability SkipReason = "missing_capability"
	SkipInsufficientData  SkipReason = "insufficient_data"
	SkipSourceUnavailable SkipReason = "source_unavailable"
)

// SkippedMetric records a metric that could not be computed and why.
// Downstream consumers read these instead of receiving a hard error.
type SkippedMetric struct {
	Metric string     `json:"metric"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}
