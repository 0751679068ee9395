package engine

import (
	"sort"

	"bnpl-portfolio-engine/internal/models"
)

// consumerAggregate is the per-consumer reduction of attempt sequences.
type consumerAggregate struct {
	firstTrySuccessRate float64
	avgRetries          float64
	instalmentCount     int
	failedAttempts      int
}

// aggregateConsumers reduces sequences to per-consumer aggregates:
// firstTrySuccessRate is the mean of first-attempt outcomes over the
// consumer's instalments, avgRetries the mean of (attemptCount-1), floored
// at zero.
func aggregateConsumers(sequences []models.AttemptSequence) map[string]consumerAggregate {
	type tally struct {
		instalments  int
		firstTryWins int
		retries      int
		failed       int
	}
	tallies := make(map[string]tally)
	for _, seq := range sequences {
		if seq.ConsumerID == "" {
			continue
		}
		t := tallies[seq.ConsumerID]
		t.instalments++
		if seq.FirstAttemptSucceeded {
			t.firstTryWins++
		}
		if seq.AttemptCount > 1 {
			t.retries += seq.AttemptCount - 1
		}
		for _, attempt := range seq.Attempts {
			if attempt.Status == models.AttemptStatusFailed {
				t.failed++
			}
		}
		tallies[seq.ConsumerID] = t
	}

	aggregates := make(map[string]consumerAggregate, len(tallies))
	for consumerID, t := range tallies {
		aggregates[consumerID] = consumerAggregate{
			firstTrySuccessRate: float64(t.firstTryWins) / float64(t.instalments),
			avgRetries:          float64(t.retries) / float64(t.instalments),
			instalmentCount:     t.instalments,
			failedAttempts:      t.failed,
		}
	}
	return aggregates
}

// classify applies the ordered threshold table, first match wins. Consumers
// with a low first-try rate but near-zero retries recover almost immediately,
// so they band with stable rather than roller.
func classify(agg consumerAggregate, t PersonaThresholds) models.PersonaKey {
	switch {
	case agg.firstTrySuccessRate >= t.HighFirstTry && agg.avgRetries <= t.StableRetryCap:
		return models.PersonaStable
	case agg.firstTrySuccessRate >= t.MidFirstTry && agg.avgRetries <= t.StableRetryCap:
		return models.PersonaStable
	case agg.firstTrySuccessRate >= t.HighFirstTry && agg.avgRetries <= t.FinisherRetryCap:
		return models.PersonaEarlyFinisher
	case agg.firstTrySuccessRate >= t.MidFirstTry && agg.avgRetries <= t.RollerRetryCap:
		return models.PersonaRoller
	case agg.firstTrySuccessRate >= t.LowFirstTry && agg.avgRetries <= t.VolatileRetryCap:
		return models.PersonaVolatile
	default:
		return models.PersonaRepeatDefaulter
	}
}

// ClassifyConsumers assigns exactly one persona per consumer for the window.
// Consumers known from plans but with zero qualifying instalments become
// never_activated. When plan completion data exists, stable consumers whose
// plans all completed without a single failed attempt are refined to
// early_finisher; refinement only ever moves consumers between stable and
// early_finisher, so the combined healthy share is preserved.
func ClassifyConsumers(
	sequences []models.AttemptSequence,
	plans []models.InstalmentPlan,
	thresholds PersonaThresholds,
) []models.ConsumerPersona {
	aggregates := aggregateConsumers(sequences)

	planStatuses := make(map[string][]models.PlanStatus)
	consumers := make(map[string]bool)
	for _, plan := range plans {
		consumers[plan.ConsumerID] = true
		if plan.Status != "" {
			planStatuses[plan.ConsumerID] = append(planStatuses[plan.ConsumerID], plan.Status)
		}
	}
	for consumerID := range aggregates {
		consumers[consumerID] = true
	}

	personas := make([]models.ConsumerPersona, 0, len(consumers))
	for consumerID := range consumers {
		agg, active := aggregates[consumerID]
		persona := models.ConsumerPersona{ConsumerID: consumerID}
		if !active {
			persona.Persona = models.PersonaNeverActivated
			personas = append(personas, persona)
			continue
		}

		persona.FirstTrySuccessRate = agg.firstTrySuccessRate
		persona.AvgRetries = agg.avgRetries
		persona.InstalmentCount = agg.instalmentCount
		persona.Persona = classify(agg, thresholds)

		if persona.Persona == models.PersonaStable && agg.failedAttempts == 0 {
			if statuses, ok := planStatuses[consumerID]; ok && allCompleted(statuses) {
				persona.Persona = models.PersonaEarlyFinisher
			}
		}
		personas = append(personas, persona)
	}

	sort.Slice(personas, func(i, j int) bool {
		return personas[i].ConsumerID < personas[j].ConsumerID
	})
	return personas
}

func allCompleted(statuses []models.PlanStatus) bool {
	for _, status := range statuses {
		if status != models.PlanStatusCompleted {
			return false
		}
	}
	return len(statuses) > 0
}
