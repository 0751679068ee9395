// Package models defines the data structures for the portfolio intelligence engine.
package models

import "time"

// InsightSeverity grades a finding.
type InsightSeverity string

const (
	SeverityInfo     InsightSeverity = "info"
	SeverityWarning  InsightSeverity = "warning"
	SeverityCritical InsightSeverity = "critical"
)

// Insight is one templated finding derived from computed report sections.
type Insight struct {
	Code     string          `json:"code"`
	Severity InsightSeverity `json:"severity"`
	Message  string          `json:"message"`
}

// PortfolioReport is the engine's output contract. Every section is
// independently nullable: a missing upstream input nils the section and adds
// a SkippedMetric entry, never an all-or-nothing failure.
type PortfolioReport struct {
	ReportID      string                 `json:"report_id"`
	Window        Window                 `json:"window"`
	CompareWindow *Window                `json:"compare_window,omitempty"`
	GeneratedAt   time.Time              `json:"generated_at"`
	Personas      []ConsumerPersona      `json:"personas,omitempty"`
	Zones         *ZoneBreakdown         `json:"zones,omitempty"`
	Merchants     *MerchantConcentration `json:"merchants,omitempty"`
	Funnel        []FunnelStage          `json:"funnel,omitempty"`
	Ranking       *RankingResult         `json:"ranking,omitempty"`
	Insights      []Insight              `json:"insights,omitempty"`
	Skipped       []SkippedMetric        `json:"skipped,omitempty"`
}
