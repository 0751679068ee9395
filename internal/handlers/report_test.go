package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appConfig "bnpl-portfolio-engine/internal/config"
)

func testAppConfig() *appConfig.Config {
	return &appConfig.Config{
		DefaultMarket:     "domestic",
		ReportWindowDays:  30,
		CompareWindowDays: 30,
		WeightByValue:     false,
	}
}

func TestEngineConfig_Defaults(t *testing.T) {
	cfg, err := EngineConfig(testAppConfig(), ReportRequest{})
	require.NoError(t, err)

	assert.Equal(t, "domestic", cfg.Market)
	assert.Nil(t, cfg.CompareWindow)
	assert.False(t, cfg.WeightByValue)
	assert.InDelta(t, 30*24*time.Hour, cfg.Window.To.Sub(cfg.Window.From), float64(time.Minute))
}

func TestEngineConfig_ExplicitWindow(t *testing.T) {
	cfg, err := EngineConfig(testAppConfig(), ReportRequest{
		WindowFrom: "2025-06-01",
		WindowTo:   "2025-06-30",
		Market:     "global",
	})
	require.NoError(t, err)

	assert.Equal(t, "global", cfg.Market)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), cfg.Window.From)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), cfg.Window.To)
}

func TestEngineConfig_InvalidDates(t *testing.T) {
	_, err := EngineConfig(testAppConfig(), ReportRequest{
		WindowFrom: "June 1st", WindowTo: "2025-06-30",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window_from")

	_, err = EngineConfig(testAppConfig(), ReportRequest{
		WindowFrom: "2025-06-01", WindowTo: "whenever",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window_to")
}

func TestEngineConfig_CompareWindowPrecedesPrimary(t *testing.T) {
	cfg, err := EngineConfig(testAppConfig(), ReportRequest{
		WindowFrom: "2025-06-01",
		WindowTo:   "2025-06-30",
		Compare:    true,
	})
	require.NoError(t, err)

	require.NotNil(t, cfg.CompareWindow)
	assert.Equal(t, cfg.Window.From, cfg.CompareWindow.To)
	assert.Equal(t, cfg.Window.From.AddDate(0, 0, -30), cfg.CompareWindow.From)
}

func TestEngineConfig_WeightByValueOverride(t *testing.T) {
	weighted := true
	cfg, err := EngineConfig(testAppConfig(), ReportRequest{WeightByValue: &weighted})
	require.NoError(t, err)
	assert.True(t, cfg.WeightByValue)
}
