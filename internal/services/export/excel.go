// Package export builds the Excel workbook rendition of a portfolio report.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"bnpl-portfolio-engine/internal/models"
)

// BuildWorkbook renders the available report sections into a workbook, one
// sheet per concern. Missing sections simply produce no sheet; the Summary
// sheet always exists.
func BuildWorkbook(report *models.PortfolioReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, report); err != nil {
		return nil, err
	}
	if report.Funnel != nil {
		if err := writeFunnel(f, report.Funnel); err != nil {
			return nil, err
		}
	}
	if report.Personas != nil {
		if err := writePersonas(f, report.Personas); err != nil {
			return nil, err
		}
	}
	if report.Zones != nil {
		if err := writeZones(f, report.Zones); err != nil {
			return nil, err
		}
	}
	if report.Merchants != nil {
		if err := writeMerchants(f, report.Merchants); err != nil {
			return nil, err
		}
	}
	if report.Ranking != nil {
		if err := writeRanking(f, report.Ranking); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, rowIdx int, values ...interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func newSheet(f *excelize.File, name string) error {
	_, err := f.NewSheet(name)
	return err
}

func writeSummary(f *excelize.File, report *models.PortfolioReport) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Report ID", report.ReportID},
		{"Window From", report.Window.From.Format("2006-01-02")},
		{"Window To", report.Window.To.Format("2006-01-02")},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	for _, insight := range report.Insights {
		rows = append(rows, []interface{}{string(insight.Severity), insight.Message})
	}
	for _, skipped := range report.Skipped {
		rows = append(rows, []interface{}{"skipped", fmt.Sprintf("%s (%s)", skipped.Metric, skipped.Reason)})
	}
	for i, row := range rows {
		if err := writeRow(f, sheet, i+1, row...); err != nil {
			return err
		}
	}
	return nil
}

func writeFunnel(f *excelize.File, stages []models.FunnelStage) error {
	const sheet = "Funnel"
	if err := newSheet(f, sheet); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, "stage", "count", "drop_off", "drop_off_pct", "conversion_pct"); err != nil {
		return err
	}
	for i, stage := range stages {
		err := writeRow(f, sheet, i+2,
			string(stage.Stage), stage.Count, stage.DropOffCount, stage.DropOffPct, stage.ConversionPct)
		if err != nil {
			return err
		}
	}
	return nil
}

func writePersonas(f *excelize.File, personas []models.ConsumerPersona) error {
	const sheet = "Personas"
	if err := newSheet(f, sheet); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, "consumer_id", "persona", "first_try_success_rate", "avg_retries", "instalments"); err != nil {
		return err
	}
	for i, p := range personas {
		err := writeRow(f, sheet, i+2,
			p.ConsumerID, string(p.Persona), p.FirstTrySuccessRate, p.AvgRetries, p.InstalmentCount)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeZones(f *excelize.File, zones *models.ZoneBreakdown) error {
	const sheet = "Zones"
	if err := newSheet(f, sheet); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, "zone", "share_pct", "drift_pp"); err != nil {
		return err
	}
	for i, zs := range zones.Zones {
		if err := writeRow(f, sheet, i+2, string(zs.Zone), zs.SharePct, zs.DriftPp); err != nil {
			return err
		}
	}
	return nil
}

func writeMerchants(f *excelize.File, concentration *models.MerchantConcentration) error {
	const sheet = "Merchants"
	if err := newSheet(f, sheet); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1,
		"merchant", "plans", "value", "volume_share_pct", "band", "escalator_share_pct", "estimated", "fragility"); err != nil {
		return err
	}
	for i, m := range concentration.Merchants {
		err := writeRow(f, sheet, i+2,
			m.MerchantName, m.PlanCount, m.Value, m.VolumeSharePct,
			string(m.ConcentrationBand), m.EscalatorSharePct, m.EscalatorEstimated, m.FragilityScore)
		if err != nil {
			return err
		}
	}
	footer := len(concentration.Merchants) + 3
	if err := writeRow(f, sheet, footer, "HHI", concentration.HHI, string(concentration.HHIBand)); err != nil {
		return err
	}
	return writeRow(f, sheet, footer+1, "Top-3 share", concentration.Top3SharePct)
}

func writeRanking(f *excelize.File, ranking *models.RankingResult) error {
	const sheet = "Ranking"
	if err := newSheet(f, sheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"market", ranking.Market},
		{"composite_score", ranking.CompositeScore},
		{"rank", ranking.Rank},
		{"provider_count", ranking.ProviderCount},
		{"approval_score", ranking.ApprovalScore},
		{"default_score", ranking.DefaultScore},
		{"growth_score", ranking.GrowthScore},
		{"scale_score", ranking.ScaleScore},
	}
	for i, row := range rows {
		if err := writeRow(f, sheet, i+1, row...); err != nil {
			return err
		}
	}
	return nil
}
