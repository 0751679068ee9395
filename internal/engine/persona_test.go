package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnpl-portfolio-engine/internal/models"
)

// sequence builds a minimal attempt sequence for classification tests.
func sequence(consumerID string, attemptCount int, firstSucceeded bool) models.AttemptSequence {
	attempts := make([]models.CollectionAttempt, attemptCount)
	for i := range attempts {
		status := models.AttemptStatusFailed
		if i == attemptCount-1 {
			status = models.AttemptStatusCompleted
		}
		if i == 0 && firstSucceeded {
			status = models.AttemptStatusCompleted
		}
		executedAt := time.Date(2025, 6, 2+i, 10, 0, 0, 0, time.UTC)
		attempts[i] = models.CollectionAttempt{
			Type:       models.AttemptTypeRetry,
			Status:     status,
			ExecutedAt: &executedAt,
		}
	}
	return models.AttemptSequence{
		ConsumerID:            consumerID,
		Attempts:              attempts,
		FirstAttemptSucceeded: firstSucceeded,
		AttemptCount:          attemptCount,
	}
}

func findPersona(t *testing.T, personas []models.ConsumerPersona, consumerID string) models.ConsumerPersona {
	t.Helper()
	for _, p := range personas {
		if p.ConsumerID == consumerID {
			return p
		}
	}
	t.Fatalf("consumer %s not classified", consumerID)
	return models.ConsumerPersona{}
}

func TestClassifyConsumers_QuickRecoveryBandsWithStable(t *testing.T) {
	// Three instalments: two first-try wins, one collected on the second
	// attempt. Rate 0.67 with 0.33 retries per instalment is stable behavior.
	sequences := []models.AttemptSequence{
		sequence("X", 1, true),
		sequence("X", 1, true),
		sequence("X", 2, false),
	}

	personas := ClassifyConsumers(sequences, nil, DefaultPersonaThresholds())
	require.Len(t, personas, 1)

	p := personas[0]
	assert.Equal(t, models.PersonaStable, p.Persona)
	assert.InDelta(t, 0.67, p.FirstTrySuccessRate, 0.01)
	assert.InDelta(t, 0.33, p.AvgRetries, 0.01)
	assert.Equal(t, 3, p.InstalmentCount)
}

func TestClassifyConsumers_NoInstalmentsMeansNeverActivated(t *testing.T) {
	plans := []models.InstalmentPlan{
		{ID: "P1", ConsumerID: "Y", Status: models.PlanStatusActive},
	}

	personas := ClassifyConsumers(nil, plans, DefaultPersonaThresholds())
	require.Len(t, personas, 1)
	assert.Equal(t, models.PersonaNeverActivated, personas[0].Persona)
	assert.Zero(t, personas[0].InstalmentCount)
}

func TestClassifyConsumers_ThresholdTable(t *testing.T) {
	tests := []struct {
		name      string
		sequences []models.AttemptSequence
		want      models.PersonaKey
	}{
		{
			name: "all first-try wins is stable",
			sequences: []models.AttemptSequence{
				sequence("C", 1, true),
				sequence("C", 1, true),
			},
			want: models.PersonaStable,
		},
		{
			name: "high first-try with moderate retries is early finisher",
			// 4 of 5 first-try, one instalment took 6 attempts: rate 0.8,
			// avg retries 1.0.
			sequences: []models.AttemptSequence{
				sequence("C", 1, true),
				sequence("C", 1, true),
				sequence("C", 1, true),
				sequence("C", 1, true),
				sequence("C", 6, false),
			},
			want: models.PersonaEarlyFinisher,
		},
		{
			name: "mid first-try with heavy retries is roller",
			// 1 of 2 first-try, 4 retries over 2 instalments: rate 0.5,
			// avg retries 2.0.
			sequences: []models.AttemptSequence{
				sequence("C", 1, true),
				sequence("C", 5, false),
			},
			want: models.PersonaRoller,
		},
		{
			name: "low first-try with high retries is volatile",
			// 1 of 4 first-try, avg retries 3.0.
			sequences: []models.AttemptSequence{
				sequence("C", 1, true),
				sequence("C", 5, false),
				sequence("C", 5, false),
				sequence("C", 5, false),
			},
			want: models.PersonaVolatile,
		},
		{
			name: "no first-try wins and excessive retries is repeat defaulter",
			sequences: []models.AttemptSequence{
				sequence("C", 6, false),
				sequence("C", 6, false),
			},
			want: models.PersonaRepeatDefaulter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			personas := ClassifyConsumers(tt.sequences, nil, DefaultPersonaThresholds())
			require.Len(t, personas, 1)
			assert.Equal(t, tt.want, personas[0].Persona)
		})
	}
}

func TestClassifyConsumers_LabelAlwaysValid(t *testing.T) {
	sequences := []models.AttemptSequence{
		sequence("A", 1, true),
		sequence("B", 3, false),
		sequence("C", 7, false),
	}
	plans := []models.InstalmentPlan{
		{ID: "P1", ConsumerID: "D"},
	}

	personas := ClassifyConsumers(sequences, plans, DefaultPersonaThresholds())
	require.Len(t, personas, 4)
	for _, p := range personas {
		assert.True(t, p.Persona.IsValid(), "consumer %s got label %q", p.ConsumerID, p.Persona)
	}
}

func TestClassifyConsumers_EarlyFinisherRefinement(t *testing.T) {
	sequences := []models.AttemptSequence{
		sequence("C1", 1, true),
		sequence("C2", 1, true),
	}
	plans := []models.InstalmentPlan{
		{ID: "P1", ConsumerID: "C1", Status: models.PlanStatusCompleted},
		{ID: "P2", ConsumerID: "C2", Status: models.PlanStatusActive},
	}

	personas := ClassifyConsumers(sequences, plans, DefaultPersonaThresholds())
	require.Len(t, personas, 2)

	assert.Equal(t, models.PersonaEarlyFinisher, findPersona(t, personas, "C1").Persona,
		"clean record with all plans completed refines to early finisher")
	assert.Equal(t, models.PersonaStable, findPersona(t, personas, "C2").Persona,
		"active plans stay stable")
}

func TestClassifyConsumers_OneLabelPerConsumer(t *testing.T) {
	sequences := []models.AttemptSequence{
		sequence("C1", 1, true),
		sequence("C1", 2, false),
		sequence("C1", 3, false),
	}
	plans := []models.InstalmentPlan{
		{ID: "P1", ConsumerID: "C1"},
		{ID: "P2", ConsumerID: "C1"},
	}

	personas := ClassifyConsumers(sequences, plans, DefaultPersonaThresholds())
	assert.Len(t, personas, 1, "multiple plans and sequences still yield one label")
}

func TestClassifyConsumers_SortedByConsumerID(t *testing.T) {
	sequences := []models.AttemptSequence{
		sequence("zeta", 1, true),
		sequence("alpha", 1, true),
		sequence("mike", 1, true),
	}

	personas := ClassifyConsumers(sequences, nil, DefaultPersonaThresholds())
	require.Len(t, personas, 3)
	assert.Equal(t, "alpha", personas[0].ConsumerID)
	assert.Equal(t, "mike", personas[1].ConsumerID)
	assert.Equal(t, "zeta", personas[2].ConsumerID)
}
