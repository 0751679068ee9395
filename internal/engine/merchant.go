package engine

import (
	"sort"

	"bnpl-portfolio-engine/internal/models"
)

// HHI band cut-offs on the 0-10,000 scale.
const (
	hhiModerateFloor = 1500
	hhiHighFloor     = 2500
)

// Per-merchant absolute share bands, independent of the portfolio HHI.
const (
	merchantHighSharePct   = 25
	merchantMediumSharePct = 10
)

// syntheticEscalatorShare is the rank-based proxy used when no per-merchant
// persona breakdown exists. Larger merchants are assumed to carry
// proportionally more of the risk segment; the result is labeled estimated so
// consumers never mistake it for a measured value.
func syntheticEscalatorShare(rank int) float64 {
	switch rank {
	case 1:
		return 25
	case 2:
		return 20
	case 3:
		return 15
	case 4:
		return 10
	case 5:
		return 5
	default:
		return 2
	}
}

// AnalyzeMerchants computes per-merchant volume shares, concentration bands,
// the portfolio HHI, top-3 concentration and the composite fragility score.
// The escalator share is measured from the repeat-defaulter value share per
// merchant when personas are available, otherwise proxied by volume rank.
func AnalyzeMerchants(
	plans []models.InstalmentPlan,
	personas []models.ConsumerPersona,
	weights FragilityWeights,
) *models.MerchantConcentration {
	type tally struct {
		planCount      int
		value          float64
		escalatorValue float64
	}

	personaByConsumer := make(map[string]models.PersonaKey, len(personas))
	for _, p := range personas {
		personaByConsumer[p.ConsumerID] = p.Persona
	}
	escalatorMeasured := len(personaByConsumer) > 0

	tallies := make(map[string]*tally)
	for _, plan := range plans {
		name := plan.MerchantName
		if name == "" {
			name = "unattributed"
		}
		t, ok := tallies[name]
		if !ok {
			t = &tally{}
			tallies[name] = t
		}
		t.planCount++
		t.value += plan.TotalAmount
		if escalatorMeasured && personaByConsumer[plan.ConsumerID] == models.PersonaRepeatDefaulter {
			t.escalatorValue += plan.TotalAmount
		}
	}
	if len(tallies) == 0 {
		return nil
	}

	var totalValue float64
	for _, t := range tallies {
		totalValue += t.value
	}
	if totalValue <= 0 {
		return nil
	}

	merchants := make([]models.MerchantExposure, 0, len(tallies))
	for name, t := range tallies {
		merchants = append(merchants, models.MerchantExposure{
			MerchantName:   name,
			PlanCount:      t.planCount,
			Value:          t.value,
			VolumeSharePct: 100 * t.value / totalValue,
		})
	}
	sort.Slice(merchants, func(i, j int) bool {
		if merchants[i].Value != merchants[j].Value {
			return merchants[i].Value > merchants[j].Value
		}
		return merchants[i].MerchantName < merchants[j].MerchantName
	})

	result := &models.MerchantConcentration{MerchantCount: len(merchants)}
	for i := range merchants {
		m := &merchants[i]
		result.HHI += m.VolumeSharePct * m.VolumeSharePct
		if i < 3 {
			result.Top3SharePct += m.VolumeSharePct
		}

		switch {
		case m.VolumeSharePct >= merchantHighSharePct:
			m.ConcentrationBand = models.ConcentrationHigh
		case m.VolumeSharePct >= merchantMediumSharePct:
			m.ConcentrationBand = models.ConcentrationMedium
		default:
			m.ConcentrationBand = models.ConcentrationLow
		}

		if escalatorMeasured {
			if t := tallies[m.MerchantName]; t.value > 0 {
				m.EscalatorSharePct = 100 * t.escalatorValue / t.value
			}
		} else {
			m.EscalatorSharePct = syntheticEscalatorShare(i + 1)
			m.EscalatorEstimated = true
		}

		topTier := 0.0
		if i < 3 {
			topTier = 1
		}
		m.FragilityScore = round1(100 * (weights.VolumeShare*m.VolumeSharePct/100 +
			weights.EscalatorShare*m.EscalatorSharePct/100 +
			weights.TopTier*topTier))
	}

	switch {
	case result.HHI > hhiHighFloor:
		result.HHIBand = models.HHIBandHigh
	case result.HHI >= hhiModerateFloor:
		result.HHIBand = models.HHIBandModerate
	default:
		result.HHIBand = models.HHIBandLow
	}

	result.Merchants = merchants
	return result
}
