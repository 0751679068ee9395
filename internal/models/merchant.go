// Package models defines the data structures for the portfolio intelligence engine.
package models

// ConcentrationBand classifies a single merchant's volume share against
// absolute thresholds, independent of the portfolio HHI band.
type ConcentrationBand string

const (
	ConcentrationLow    ConcentrationBand = "low"
	ConcentrationMedium ConcentrationBand = "medium"
	ConcentrationHigh   ConcentrationBand = "high"
)

// HHIBand classifies the whole portfolio's Herfindahl-Hirschman Index.
type HHIBand string

const (
	HHIBandLow      HHIBand = "low"
	HHIBandModerate HHIBand = "moderate"
	HHIBandHigh     HHIBand = "high"
)

// MerchantExposure is the per-merchant concentration view of a window.
// EscalatorEstimated marks the escalator share as a rank-based proxy rather
// than a measured per-merchant persona breakdown.
type MerchantExposure struct {
	MerchantName       string            `json:"merchant_name"`
	PlanCount          int               `json:"plan_count"`
	Value              float64           `json:"value"`
	VolumeSharePct     float64           `json:"volume_share_pct"`
	ConcentrationBand  ConcentrationBand `json:"concentration_band"`
	EscalatorSharePct  float64           `json:"escalator_share_pct"`
	EscalatorEstimated bool              `json:"escalator_estimated"`
	FragilityScore     float64           `json:"fragility_score"`
}

// MerchantConcentration is the portfolio-level concentration summary.
type MerchantConcentration struct {
	Merchants     []MerchantExposure `json:"merchants"`
	HHI           float64            `json:"hhi"`
	HHIBand       HHIBand            `json:"hhi_band"`
	Top3SharePct  float64            `json:"top3_share_pct"`
	MerchantCount int                `json:"merchant_count"`
}
