package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnpl-portfolio-engine/internal/models"
)

func domesticBenchmark(t *testing.T) models.BenchmarkProfile {
	t.Helper()
	b, err := models.LookupBenchmark("domestic")
	require.NoError(t, err)
	return b
}

func TestScoreRanking_MidTierPortfolio(t *testing.T) {
	metrics := models.PortfolioMetrics{
		ApprovalRate: 70,
		DefaultRate:  5,
		GrowthRate:   15,
		ScaleVolume:  10000,
	}

	result := ScoreRanking(metrics, domesticBenchmark(t), DefaultRankingPolicy())

	// approval 100*(70-55)/(83-55), default 100*(8-5)/(8-4.2),
	// growth 100*(15-10)/(25-10) undampened at 10k, scale 50*10000/20000.
	assert.InDelta(t, 53.57, result.ApprovalScore, 0.01)
	assert.InDelta(t, 78.95, result.DefaultScore, 0.01)
	assert.InDelta(t, 33.33, result.GrowthScore, 0.01)
	assert.InDelta(t, 25.0, result.ScaleScore, 0.01)
	assert.InDelta(t, 47.30, result.CompositeScore, 0.01)

	// 10,000 clears the top-5 floor but not the top-3 floor.
	assert.GreaterOrEqual(t, result.Rank, 4)
	assert.LessOrEqual(t, result.Rank, 8)
	assert.Equal(t, 5, result.Rank)
}

func TestScoreRanking_RankAlwaysInRange(t *testing.T) {
	benchmark := domesticBenchmark(t)
	policy := DefaultRankingPolicy()

	extremes := []models.PortfolioMetrics{
		{ApprovalRate: 100, DefaultRate: 0, GrowthRate: 100, ScaleVolume: 1e6},
		{ApprovalRate: 0, DefaultRate: 50, GrowthRate: -20, ScaleVolume: 0},
		{ApprovalRate: 55, DefaultRate: 8, GrowthRate: 10, ScaleVolume: 20000},
	}
	for _, metrics := range extremes {
		result := ScoreRanking(metrics, benchmark, policy)
		assert.GreaterOrEqual(t, result.Rank, 1)
		assert.LessOrEqual(t, result.Rank, benchmark.ProviderCount)
	}
}

func TestScoreRanking_ScaleFloors(t *testing.T) {
	benchmark := domesticBenchmark(t)
	policy := DefaultRankingPolicy()

	// Outstanding metrics on a tiny book: the raw rank would be 1.
	strong := models.PortfolioMetrics{ApprovalRate: 83, DefaultRate: 3, GrowthRate: 30}

	strong.ScaleVolume = 5000
	tiny := ScoreRanking(strong, benchmark, policy)
	assert.GreaterOrEqual(t, tiny.Rank, 6, "below the top-5 eligibility scale")

	strong.ScaleVolume = 15000
	small := ScoreRanking(strong, benchmark, policy)
	assert.GreaterOrEqual(t, small.Rank, 4, "below the top-3 eligibility scale")

	strong.ScaleVolume = 60000
	large := ScoreRanking(strong, benchmark, policy)
	assert.Equal(t, 1, large.Rank, "at scale, strong metrics take the top rank")
}

func TestScoreRanking_GrowthDampening(t *testing.T) {
	benchmark := domesticBenchmark(t)
	policy := DefaultRankingPolicy()

	spike := models.PortfolioMetrics{ApprovalRate: 55, DefaultRate: 8, GrowthRate: 25}

	spike.ScaleVolume = 2500
	dampened := ScoreRanking(spike, benchmark, policy)
	assert.InDelta(t, 25.0, dampened.GrowthScore, 0.01, "a quarter of threshold volume keeps a quarter of the growth score")

	spike.ScaleVolume = 10000
	full := ScoreRanking(spike, benchmark, policy)
	assert.InDelta(t, 100.0, full.GrowthScore, 0.01)
}

func TestScoreRanking_ComponentClamping(t *testing.T) {
	benchmark := domesticBenchmark(t)
	result := ScoreRanking(models.PortfolioMetrics{
		ApprovalRate: 99,  // far above the top band
		DefaultRate:  0.1, // far under the best band
		GrowthRate:   -50,
		ScaleVolume:  1e6,
	}, benchmark, DefaultRankingPolicy())

	assert.Equal(t, 100.0, result.ApprovalScore)
	assert.Equal(t, 100.0, result.DefaultScore)
	assert.Equal(t, 0.0, result.GrowthScore)
	assert.Equal(t, 100.0, result.ScaleScore)
}

func TestScoreRanking_DegenerateBenchmarkBandScoresNeutral(t *testing.T) {
	benchmark := domesticBenchmark(t)
	benchmark.ApprovalRateTop = benchmark.ApprovalRateAvg

	result := ScoreRanking(models.PortfolioMetrics{
		ApprovalRate: 70, DefaultRate: 5, GrowthRate: 15, ScaleVolume: 30000,
	}, benchmark, DefaultRankingPolicy())
	assert.Equal(t, 50.0, result.ApprovalScore)
}

func TestProjectScenario_Levers(t *testing.T) {
	benchmark := domesticBenchmark(t)
	policy := DefaultRankingPolicy()
	metrics := models.PortfolioMetrics{
		ApprovalRate: 70, DefaultRate: 5, GrowthRate: 15, ScaleVolume: 10000,
	}

	t.Run("default rate cut raises the composite", func(t *testing.T) {
		result := ProjectScenario(metrics, benchmark, policy, models.ScenarioLever{
			Kind: models.LeverDefault, Delta: -2,
		})
		assert.Greater(t, result.Projected.CompositeScore, result.Baseline.CompositeScore)
		assert.InDelta(t, 100.0, result.Projected.DefaultScore, 0.01, "3% default is under the best band")
	})

	t.Run("scale lever is multiplicative", func(t *testing.T) {
		result := ProjectScenario(metrics, benchmark, policy, models.ScenarioLever{
			Kind: models.LeverScale, Delta: 2.5,
		})
		assert.InDelta(t, 58.33, result.Projected.ScaleScore, 0.01, "25,000 sits a sixth of the way from established to mature")
		assert.Less(t, result.Projected.Rank, result.Baseline.Rank, "2.5x volume clears the top-3 floor")
	})

	t.Run("baseline is untouched by the lever", func(t *testing.T) {
		result := ProjectScenario(metrics, benchmark, policy, models.ScenarioLever{
			Kind: models.LeverApproval, Delta: 10,
		})
		plain := ScoreRanking(metrics, benchmark, policy)
		assert.Equal(t, plain, result.Baseline)
	})
}
