package engine

import (
	"math"

	"bnpl-portfolio-engine/internal/models"
)

// Composite score component weights.
const (
	approvalWeight = 0.25
	defaultWeight  = 0.25
	growthWeight   = 0.20
	scaleWeight    = 0.30
)

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// scaleScore maps volume onto 0-100: linear 0→50 up to the established
// scale, linear 50→100 up to the mature scale, 100 above it.
func scaleScore(volume float64, b models.BenchmarkProfile) float64 {
	switch {
	case volume <= 0:
		return 0
	case volume <= b.ScaleEstablished:
		if b.ScaleEstablished <= 0 {
			return 100
		}
		return 50 * volume / b.ScaleEstablished
	case volume <= b.ScaleMature:
		span := b.ScaleMature - b.ScaleEstablished
		if span <= 0 {
			return 100
		}
		return 50 + 50*(volume-b.ScaleEstablished)/span
	default:
		return 100
	}
}

// normalizeAbove scores a higher-is-better metric against an average/top
// band. A degenerate band (top not above average) scores neutral.
func normalizeAbove(value, avg, top float64) float64 {
	if top <= avg {
		return 50
	}
	return clampScore(100 * (value - avg) / (top - avg))
}

// normalizeBelow scores a lower-is-better metric: full marks at or under the
// best band, zero at or over the average.
func normalizeBelow(value, avg, best float64) float64 {
	if avg <= best {
		return 50
	}
	return clampScore(100 * (avg - value) / (avg - best))
}

// ScoreRanking normalizes portfolio metrics against the benchmark bands,
// blends them into a weighted composite and derives a 1..N rank. Growth is
// dampened below the policy's volume threshold so early-stage spikes cannot
// inflate the score at negligible scale, and rank floors keep portfolios
// under the top-3/top-5 eligibility scales out of the head of the table.
func ScoreRanking(m models.PortfolioMetrics, b models.BenchmarkProfile, p RankingPolicy) models.RankingResult {
	result := models.RankingResult{
		Market:        b.Market,
		ProviderCount: b.ProviderCount,
		ApprovalScore: normalizeAbove(m.ApprovalRate, b.ApprovalRateAvg, b.ApprovalRateTop),
		DefaultScore:  normalizeBelow(m.DefaultRate, b.DefaultRateAvg, b.DefaultRateBest),
		ScaleScore:    scaleScore(m.ScaleVolume, b),
	}

	dampen := 1.0
	if p.DampenThreshold > 0 {
		dampen = math.Min(1, m.ScaleVolume/p.DampenThreshold)
		if dampen < 0 {
			dampen = 0
		}
	}
	result.GrowthScore = normalizeAbove(m.GrowthRate, b.GrowthAvg, b.GrowthTop) * dampen

	result.CompositeScore = approvalWeight*result.ApprovalScore +
		defaultWeight*result.DefaultScore +
		growthWeight*result.GrowthScore +
		scaleWeight*result.ScaleScore

	rank := int(math.Round(1 + (100-result.CompositeScore)/100*float64(b.ProviderCount-1)))

	// Scale floors: thin portfolios cannot rank on thin data.
	if m.ScaleVolume < p.Top5EligibleScale && rank < 6 {
		rank = 6
	}
	if m.ScaleVolume < p.Top3EligibleScale && rank < 4 {
		rank = 4
	}

	if rank < 1 {
		rank = 1
	}
	if rank > b.ProviderCount {
		rank = b.ProviderCount
	}
	result.Rank = rank
	return result
}

// applyLever shifts one input metric. Approval, default and growth levers are
// additive percentage points; the scale lever multiplies volume.
func applyLever(m models.PortfolioMetrics, lever models.ScenarioLever) models.PortfolioMetrics {
	switch lever.Kind {
	case models.LeverApproval:
		m.ApprovalRate += lever.Delta
	case models.LeverDefault:
		m.DefaultRate += lever.Delta
	case models.LeverGrowth:
		m.GrowthRate += lever.Delta
	case models.LeverScale:
		m.ScaleVolume *= lever.Delta
	}
	return m
}

// ProjectScenario quantifies a lever's impact by re-applying the ranking
// formula to the shifted metrics. Pure re-application; no new rules.
func ProjectScenario(
	m models.PortfolioMetrics,
	b models.BenchmarkProfile,
	p RankingPolicy,
	lever models.ScenarioLever,
) models.ScenarioResult {
	return models.ScenarioResult{
		Lever:     lever,
		Baseline:  ScoreRanking(m, b, p),
		Projected: ScoreRanking(applyLever(m, lever), b, p),
	}
}
