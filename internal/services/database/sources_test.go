package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnpl-portfolio-engine/internal/engine"
	"bnpl-portfolio-engine/internal/models"
)

var _ engine.DataSource = (*Store)(nil)

func TestSourceFallbackOrder(t *testing.T) {
	// The operational table is always the first candidate; mirrors follow.
	require.NotEmpty(t, attemptSources)
	assert.Equal(t, "collection_attempts", attemptSources[0].Name)

	require.NotEmpty(t, instalmentSources)
	assert.Equal(t, "instalments", instalmentSources[0].Name)

	require.NotEmpty(t, planSources)
	assert.Equal(t, "instalment_plans", planSources[0].Name)
}

func TestFunnelStageSources_CoverEveryStage(t *testing.T) {
	for _, stage := range models.FunnelStageOrder {
		sources, ok := funnelStageSources[stage]
		require.True(t, ok, "stage %s has no source list", stage)
		require.NotEmpty(t, sources, "stage %s has an empty source list", stage)
		for _, src := range sources {
			assert.NotEmpty(t, src.Name)
			assert.Contains(t, strings.ToUpper(src.Query), "COUNT", "stage sources are count queries: %s", src.Name)
		}
	}
}

func TestWindowedSourcesBindBothBounds(t *testing.T) {
	windowed := append([]SourceDescriptor{}, attemptSources...)
	windowed = append(windowed, planSources...)
	for _, sources := range funnelStageSources {
		windowed = append(windowed, sources...)
	}

	for _, src := range windowed {
		assert.Contains(t, src.Query, "$1", src.Name)
		assert.Contains(t, src.Query, "$2", src.Name)
	}
}
