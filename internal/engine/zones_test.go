package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnpl-portfolio-engine/internal/models"
)

func personasOf(counts map[models.PersonaKey]int) []models.ConsumerPersona {
	var personas []models.ConsumerPersona
	i := 0
	for _, key := range models.AllPersonas() {
		for n := 0; n < counts[key]; n++ {
			personas = append(personas, models.ConsumerPersona{
				ConsumerID: fmt.Sprintf("c%03d", i),
				Persona:    key,
			})
			i++
		}
	}
	return personas
}

func TestAggregateZones_SharesSumToHundred(t *testing.T) {
	// 7 consumers split 3/2/1/1 produce repeating decimals; renormalization
	// must still land on exactly 100.0.
	personas := personasOf(map[models.PersonaKey]int{
		models.PersonaStable:          3,
		models.PersonaRoller:          2,
		models.PersonaRepeatDefaulter: 1,
		models.PersonaNeverActivated:  1,
	})

	breakdown := AggregateZones(personas, nil, nil, nil, false, 20)
	require.NotNil(t, breakdown)
	require.Len(t, breakdown.Zones, 4)

	var total float64
	for _, zs := range breakdown.Zones {
		total += zs.SharePct
	}
	assert.InDelta(t, 100.0, total, 0.0001, "shares must sum to exactly 100.0")
	assert.Equal(t, 7, breakdown.ConsumerCount)
}

func TestAggregateZones_PersonaToZoneMapping(t *testing.T) {
	personas := personasOf(map[models.PersonaKey]int{
		models.PersonaStable:        1,
		models.PersonaEarlyFinisher: 1,
		models.PersonaRoller:        1,
		models.PersonaVolatile:      1,
	})

	breakdown := AggregateZones(personas, nil, nil, nil, false, 20)
	require.NotNil(t, breakdown)
	require.Len(t, breakdown.Zones, 2, "stable+finisher fold to healthy, roller+volatile to friction")

	assert.Equal(t, models.ZoneHealthy, breakdown.Zones[0].Zone)
	assert.Equal(t, 50.0, breakdown.Zones[0].SharePct)
	assert.Equal(t, models.ZoneFriction, breakdown.Zones[1].Zone)
	assert.Equal(t, 50.0, breakdown.Zones[1].SharePct)
}

func TestAggregateZones_ValueWeighting(t *testing.T) {
	personas := personasOf(map[models.PersonaKey]int{
		models.PersonaStable:          1,
		models.PersonaRepeatDefaulter: 1,
	})
	values := map[string]float64{
		personas[0].ConsumerID: 900,
		personas[1].ConsumerID: 100,
	}

	breakdown := AggregateZones(personas, nil, values, nil, true, 20)
	require.NotNil(t, breakdown)
	require.True(t, breakdown.WeightedByValue)
	require.Len(t, breakdown.Zones, 2)

	assert.Equal(t, models.ZoneHealthy, breakdown.Zones[0].Zone)
	assert.Equal(t, 90.0, breakdown.Zones[0].SharePct)
	assert.Equal(t, 10.0, breakdown.Zones[1].SharePct)
}

func TestAggregateZones_MissingValueFallsBackToCount(t *testing.T) {
	personas := personasOf(map[models.PersonaKey]int{
		models.PersonaStable:          1,
		models.PersonaRepeatDefaulter: 1,
	})
	// Only one consumer has a recorded value; the other must not vanish.
	values := map[string]float64{personas[0].ConsumerID: 99}

	breakdown := AggregateZones(personas, nil, values, nil, true, 20)
	require.NotNil(t, breakdown)
	assert.Len(t, breakdown.Zones, 2)
}

func TestAggregateZones_EmptyWindow(t *testing.T) {
	assert.Nil(t, AggregateZones(nil, nil, nil, nil, false, 20))
}

func TestAggregateZones_DriftRequiresCohort(t *testing.T) {
	current := personasOf(map[models.PersonaKey]int{
		models.PersonaStable:          15,
		models.PersonaRepeatDefaulter: 10,
	})
	thinPrevious := personasOf(map[models.PersonaKey]int{
		models.PersonaStable: 5,
	})

	breakdown := AggregateZones(current, thinPrevious, nil, nil, false, 20)
	require.NotNil(t, breakdown)
	assert.False(t, breakdown.DriftAvailable, "under-cohort comparison window suppresses drift")
}

func TestAggregateZones_Drift(t *testing.T) {
	current := personasOf(map[models.PersonaKey]int{
		models.PersonaStable:          10,
		models.PersonaRepeatDefaulter: 10,
	})
	previous := personasOf(map[models.PersonaKey]int{
		models.PersonaStable:          15,
		models.PersonaRepeatDefaulter: 5,
	})

	breakdown := AggregateZones(current, previous, nil, nil, false, 20)
	require.NotNil(t, breakdown)
	require.True(t, breakdown.DriftAvailable)
	require.Len(t, breakdown.Zones, 2)

	assert.Equal(t, models.ZoneHealthy, breakdown.Zones[0].Zone)
	assert.Equal(t, -25.0, breakdown.Zones[0].DriftPp)
	assert.Equal(t, models.ZoneRisk, breakdown.Zones[1].Zone)
	assert.Equal(t, 25.0, breakdown.Zones[1].DriftPp)
}

func TestAggregateZones_ZoneOnlyInPreviousWindowStillListed(t *testing.T) {
	current := personasOf(map[models.PersonaKey]int{
		models.PersonaStable: 20,
	})
	previous := personasOf(map[models.PersonaKey]int{
		models.PersonaStable:          15,
		models.PersonaRepeatDefaulter: 5,
	})

	breakdown := AggregateZones(current, previous, nil, nil, false, 20)
	require.NotNil(t, breakdown)
	require.True(t, breakdown.DriftAvailable)
	require.Len(t, breakdown.Zones, 2)

	assert.Equal(t, models.ZoneRisk, breakdown.Zones[1].Zone)
	assert.Equal(t, 0.0, breakdown.Zones[1].SharePct)
	assert.Equal(t, -25.0, breakdown.Zones[1].DriftPp)
}
