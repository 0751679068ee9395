package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bnpl-portfolio-engine/internal/models"
)

func fullReport() *models.PortfolioReport {
	return &models.PortfolioReport{
		ReportID: "rep-001",
		Window: models.Window{
			From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		GeneratedAt: time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC),
		Personas: []models.ConsumerPersona{
			{ConsumerID: "C1", Persona: models.PersonaStable, FirstTrySuccessRate: 0.9, InstalmentCount: 4},
		},
		Zones: &models.ZoneBreakdown{
			Zones: []models.ZoneShare{{Zone: models.ZoneHealthy, SharePct: 100}},
		},
		Merchants: &models.MerchantConcentration{
			Merchants: []models.MerchantExposure{
				{MerchantName: "Acme", PlanCount: 3, Value: 600, VolumeSharePct: 60, ConcentrationBand: models.ConcentrationHigh},
			},
			HHI:          4600,
			HHIBand:      models.HHIBandHigh,
			Top3SharePct: 100,
		},
		Funnel: []models.FunnelStage{
			{Stage: models.StageSignedUp, Count: 1000, ConversionPct: 100},
			{Stage: models.StageKycCompleted, Count: 900, DropOffCount: 100, DropOffPct: 10, ConversionPct: 90},
		},
		Ranking: &models.RankingResult{Market: "domestic", CompositeScore: 47.3, Rank: 5, ProviderCount: 8},
		Insights: []models.Insight{
			{Code: "portfolio_hhi", Severity: models.SeverityWarning, Message: "portfolio HHI 4600 is in the high concentration band"},
		},
		Skipped: []models.SkippedMetric{
			{Metric: "zone_drift", Reason: models.SkipInsufficientData, Detail: "no comparison window"},
		},
	}
}

func TestBuildWorkbook_AllSections(t *testing.T) {
	data, err := BuildWorkbook(fullReport())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"Summary", "Funnel", "Personas", "Zones", "Merchants", "Ranking"},
		f.GetSheetList())

	reportID, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "rep-001", reportID)

	stage, err := f.GetCellValue("Funnel", "A2")
	require.NoError(t, err)
	assert.Equal(t, "signed_up", stage)
}

func TestBuildWorkbook_DegradedReport(t *testing.T) {
	report := &models.PortfolioReport{
		ReportID: "rep-002",
		Window: models.Window{
			From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		GeneratedAt: time.Now().UTC(),
		Skipped: []models.SkippedMetric{
			{Metric: "personas", Reason: models.SkipSourceUnavailable, Detail: "connection refused"},
		},
	}

	data, err := BuildWorkbook(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary"}, f.GetSheetList(), "missing sections produce no sheets")

	label, err := f.GetCellValue("Summary", "A5")
	require.NoError(t, err)
	assert.Equal(t, "skipped", label)
}
