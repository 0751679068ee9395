package engine

import (
	"math"

	"bnpl-portfolio-engine/internal/models"
)

// zoneWeights sums persona weights into macro zones. Weights are plan value
// per consumer when weighing by value, otherwise 1 per consumer; a consumer
// without a recorded value falls back to count weighting so they are never
// silently dropped.
func zoneWeights(personas []models.ConsumerPersona, values map[string]float64, byValue bool) map[models.ZoneKey]float64 {
	weights := make(map[models.ZoneKey]float64)
	for _, persona := range personas {
		weight := 1.0
		if byValue {
			if v, ok := values[persona.ConsumerID]; ok && v > 0 {
				weight = v
			}
		}
		weights[models.ZoneForPersona(persona.Persona)] += weight
	}
	return weights
}

// shareTable converts zone weights into percentage shares rounded to one
// decimal, then renormalizes by largest remainder so the present zones sum to
// exactly 100.0.
func shareTable(weights map[models.ZoneKey]float64) map[models.ZoneKey]float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return nil
	}

	// Work in tenths of a percent so the remainder distribution is integral.
	type entry struct {
		zone      models.ZoneKey
		tenths    int64
		remainder float64
	}
	var entries []entry
	var allocated int64
	for _, zone := range models.ZoneOrder {
		w, ok := weights[zone]
		if !ok || w <= 0 {
			continue
		}
		exact := 1000 * w / total
		floor := math.Floor(exact)
		entries = append(entries, entry{zone: zone, tenths: int64(floor), remainder: exact - floor})
		allocated += int64(floor)
	}

	for leftover := int64(1000) - allocated; leftover > 0; leftover-- {
		best := -1
		for i := range entries {
			if best == -1 || entries[i].remainder > entries[best].remainder {
				best = i
			}
		}
		if best == -1 {
			break
		}
		entries[best].tenths++
		entries[best].remainder = -1
	}

	shares := make(map[models.ZoneKey]float64, len(entries))
	for _, e := range entries {
		shares[e.zone] = float64(e.tenths) / 10
	}
	return shares
}

// AggregateZones groups personas into macro risk zones with weighted share
// percentages and, when a comparison window's personas are supplied with a
// sufficient cohort on both sides, period-over-period drift in percentage
// points.
func AggregateZones(
	current []models.ConsumerPersona,
	previous []models.ConsumerPersona,
	currentValues map[string]float64,
	previousValues map[string]float64,
	byValue bool,
	minDriftCohort int,
) *models.ZoneBreakdown {
	currentShares := shareTable(zoneWeights(current, currentValues, byValue))
	if currentShares == nil {
		return nil
	}

	breakdown := &models.ZoneBreakdown{
		WeightedByValue: byValue,
		ConsumerCount:   len(current),
	}

	var previousShares map[models.ZoneKey]float64
	if len(current) >= minDriftCohort && len(previous) >= minDriftCohort {
		previousShares = shareTable(zoneWeights(previous, previousValues, byValue))
		breakdown.DriftAvailable = previousShares != nil
	}

	for _, zone := range models.ZoneOrder {
		share, inCurrent := currentShares[zone]
		_, inPrevious := previousShares[zone]
		if !inCurrent && !inPrevious {
			continue
		}
		zs := models.ZoneShare{Zone: zone, SharePct: share}
		if breakdown.DriftAvailable {
			zs.DriftPp = round1(share - previousShares[zone])
		}
		breakdown.Zones = append(breakdown.Zones, zs)
	}
	return breakdown
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
