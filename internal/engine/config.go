// Package engine implements the behavioral classification and portfolio
// scoring pipeline: retry-sequence reconstruction, persona classification,
// macro-zone aggregation, merchant concentration, funnel math, competitive
// ranking and insight generation.
package engine

import (
	"bnpl-portfolio-engine/internal/models"
)

// PersonaThresholds are the classification constants of the persona table.
// All of them are policy, not law: callers may override any threshold per
// invocation.
type PersonaThresholds struct {
	HighFirstTry     float64 `json:"high_first_try"`
	StableRetryCap   float64 `json:"stable_retry_cap"`
	FinisherRetryCap float64 `json:"finisher_retry_cap"`
	MidFirstTry      float64 `json:"mid_first_try"`
	RollerRetryCap   float64 `json:"roller_retry_cap"`
	LowFirstTry      float64 `json:"low_first_try"`
	VolatileRetryCap float64 `json:"volatile_retry_cap"`
}

// DefaultPersonaThresholds returns the standard classification table.
func DefaultPersonaThresholds() PersonaThresholds {
	return PersonaThresholds{
		HighFirstTry:     0.8,
		StableRetryCap:   0.5,
		FinisherRetryCap: 1.5,
		MidFirstTry:      0.5,
		RollerRetryCap:   2.5,
		LowFirstTry:      0.2,
		VolatileRetryCap: 4.0,
	}
}

// RankingPolicy holds the empirically chosen ranking constants: scale floors
// that keep thin portfolios out of the top ranks and the volume threshold
// below which growth spikes are dampened.
type RankingPolicy struct {
	Top3EligibleScale float64 `json:"top3_eligible_scale"`
	Top5EligibleScale float64 `json:"top5_eligible_scale"`
	DampenThreshold   float64 `json:"dampen_threshold"`
}

// DefaultRankingPolicy returns the standard scale floors.
func DefaultRankingPolicy() RankingPolicy {
	return RankingPolicy{
		Top3EligibleScale: 20000,
		Top5EligibleScale: 8000,
		DampenThreshold:   10000,
	}
}

// FragilityWeights blend volume share, risk-segment exposure and top-tier
// membership into the per-merchant fragility score.
type FragilityWeights struct {
	VolumeShare    float64 `json:"volume_share"`
	EscalatorShare float64 `json:"escalator_share"`
	TopTier        float64 `json:"top_tier"`
}

// DefaultFragilityWeights returns the standard fragility blend.
func DefaultFragilityWeights() FragilityWeights {
	return FragilityWeights{VolumeShare: 0.35, EscalatorShare: 0.35, TopTier: 0.30}
}

// Config is the per-invocation configuration of the engine. It is constructed
// once per report and threaded through every component call; the engine holds
// no ambient state between invocations.
type Config struct {
	Window         models.Window  `json:"window"`
	CompareWindow  *models.Window `json:"compare_window,omitempty"`
	Market         string         `json:"market"`
	WeightByValue  bool           `json:"weight_by_value"`
	Thresholds     PersonaThresholds
	Ranking        RankingPolicy
	Fragility      FragilityWeights
	MinDriftCohort int `json:"min_drift_cohort"`
	MaxInsights    int `json:"max_insights"`
}

// DefaultConfig returns a config with standard thresholds for the given
// window and market.
func DefaultConfig(window models.Window, market string) Config {
	return Config{
		Window:         window,
		Market:         market,
		Thresholds:     DefaultPersonaThresholds(),
		Ranking:        DefaultRankingPolicy(),
		Fragility:      DefaultFragilityWeights(),
		MinDriftCohort: 20,
		MaxInsights:    6,
	}
}

// normalize swaps inverted windows and fills zero-value policy blocks with
// defaults so a partially built config still behaves.
func (c Config) normalize() Config {
	c.Window = c.Window.Normalize()
	if c.CompareWindow != nil {
		w := c.CompareWindow.Normalize()
		c.CompareWindow = &w
	}
	if c.Thresholds == (PersonaThresholds{}) {
		c.Thresholds = DefaultPersonaThresholds()
	}
	if c.Ranking == (RankingPolicy{}) {
		c.Ranking = DefaultRankingPolicy()
	}
	if c.Fragility == (FragilityWeights{}) {
		c.Fragility = DefaultFragilityWeights()
	}
	if c.MinDriftCohort <= 0 {
		c.MinDriftCohort = 20
	}
	if c.MaxInsights <= 0 {
		c.MaxInsights = 6
	}
	return c
}
