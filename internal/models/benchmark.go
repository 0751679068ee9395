// Package models defines the data structures for the portfolio intelligence engine.
package models

import "strings"

// BenchmarkProfile holds the market reference bands portfolio metrics are
// normalized against. Static configuration, never derived.
type BenchmarkProfile struct {
	Market           string  `json:"market"`
	ProviderCount    int     `json:"provider_count"`
	ApprovalRateAvg  float64 `json:"approval_rate_avg"`
	ApprovalRateTop  float64 `json:"approval_rate_top"`
	DefaultRateAvg   float64 `json:"default_rate_avg"`
	DefaultRateBest  float64 `json:"default_rate_best"`
	GrowthAvg        float64 `json:"growth_avg"`
	GrowthTop        float64 `json:"growth_top"`
	ScaleEstablished float64 `json:"scale_established"`
	ScaleMature      float64 `json:"scale_mature"`
}

// Built-in benchmark profiles, selectable by market id.
var benchmarkProfiles = map[string]BenchmarkProfile{
	"domestic": {
		Market:           "domestic",
		ProviderCount:    8,
		ApprovalRateAvg:  55,
		ApprovalRateTop:  83,
		DefaultRateAvg:   8,
		DefaultRateBest:  4.2,
		GrowthAvg:        10,
		GrowthTop:        25,
		ScaleEstablished: 20000,
		ScaleMature:      50000,
	},
	"global": {
		Market:           "global",
		ProviderCount:    15,
		ApprovalRateAvg:  62,
		ApprovalRateTop:  90,
		DefaultRateAvg:   6.5,
		DefaultRateBest:  3,
		GrowthAvg:        18,
		GrowthTop:        40,
		ScaleEstablished: 150000,
		ScaleMature:      600000,
	},
}

// LookupBenchmark returns the benchmark profile for a market id.
func LookupBenchmark(market string) (BenchmarkProfile, error) {
	profile, ok := benchmarkProfiles[strings.ToLower(strings.TrimSpace(market))]
	if !ok {
		return BenchmarkProfile{}, ErrUnknownMarket
	}
	if profile.ProviderCount < 1 {
		return BenchmarkProfile{}, ErrInvalidProviderCount
	}
	return profile, nil
}

// PortfolioMetrics are the inputs to the competitive ranking scorer,
// computed by the data-access collaborator for the analysis window.
type PortfolioMetrics struct {
	ApprovalRate float64 `json:"approval_rate"`
	DefaultRate  float64 `json:"default_rate"`
	GrowthRate   float64 `json:"growth_rate"`
	ScaleVolume  float64 `json:"scale_volume"`
}

// RankingResult places the portfolio against the benchmark's peer providers.
type RankingResult struct {
	Market         string  `json:"market"`
	CompositeScore float64 `json:"composite_score"`
	Rank           int     `json:"rank"`
	ProviderCount  int     `json:"provider_count"`
	ApprovalScore  float64 `json:"approval_score"`
	DefaultScore   float64 `json:"default_score"`
	GrowthScore    float64 `json:"growth_score"`
	ScaleScore     float64 `json:"scale_score"`
}

// LeverKind identifies which metric a scenario projection shifts.
type LeverKind string

const (
	LeverApproval LeverKind = "approval"
	LeverDefault  LeverKind = "default"
	LeverGrowth   LeverKind = "growth"
	LeverScale    LeverKind = "scale"
)

// ScenarioLever is one hypothetical metric shift. Approval, default and
// growth levers are additive percentage points; the scale lever is a
// multiplicative factor (e.g. 1.1 for +10%).
type ScenarioLever struct {
	Kind  LeverKind `json:"kind"`
	Delta float64   `json:"delta"`
}

// ScenarioResult pairs a lever with the ranking it would produce.
type ScenarioResult struct {
	Lever     ScenarioLever `json:"lever"`
	Baseline  RankingResult `json:"baseline"`
	Projected RankingResult `json:"projected"`
}
