package engine

import (
	"fmt"

	"bnpl-portfolio-engine/internal/models"
)

// insightRule maps one computed value against a threshold to a templated
// finding. Rules whose input section is missing are skipped.
type insightRule struct {
	code  string
	apply func(r *models.PortfolioReport) *models.Insight
}

// insightRules is the fixed, ordered rule table. Order is significance order:
// the first rules survive when the report caps findings.
var insightRules = []insightRule{
	{
		code: "merchant_top3_concentration",
		apply: func(r *models.PortfolioReport) *models.Insight {
			if r.Merchants == nil || r.Merchants.Top3SharePct <= 45 {
				return nil
			}
			return &models.Insight{
				Severity: models.SeverityCritical,
				Message: fmt.Sprintf("top-3 merchants carry %.1f%% of volume; concentration risk is high",
					r.Merchants.Top3SharePct),
			}
		},
	},
	{
		code: "portfolio_hhi",
		apply: func(r *models.PortfolioReport) *models.Insight {
			if r.Merchants == nil || r.Merchants.HHIBand != models.HHIBandHigh {
				return nil
			}
			return &models.Insight{
				Severity: models.SeverityWarning,
				Message: fmt.Sprintf("portfolio HHI %.0f is in the high concentration band",
					r.Merchants.HHI),
			}
		},
	},
	{
		code: "risk_zone_share",
		apply: func(r *models.PortfolioReport) *models.Insight {
			share, ok := zoneShare(r, models.ZoneRisk)
			if !ok {
				return nil
			}
			switch {
			case share > 15:
				return &models.Insight{
					Severity: models.SeverityCritical,
					Message:  fmt.Sprintf("repeat defaulters hold %.1f%% of the portfolio", share),
				}
			case share > 8:
				return &models.Insight{
					Severity: models.SeverityWarning,
					Message:  fmt.Sprintf("repeat defaulters hold %.1f%% of the portfolio", share),
				}
			}
			return nil
		},
	},
	{
		code: "risk_zone_drift",
		apply: func(r *models.PortfolioReport) *models.Insight {
			if r.Zones == nil || !r.Zones.DriftAvailable {
				return nil
			}
			for _, zs := range r.Zones.Zones {
				if zs.Zone == models.ZoneRisk && zs.DriftPp > 3 {
					return &models.Insight{
						Severity: models.SeverityWarning,
						Message:  fmt.Sprintf("risk zone grew %.1fpp against the comparison window", zs.DriftPp),
					}
				}
			}
			return nil
		},
	},
	{
		code: "never_activated_share",
		apply: func(r *models.PortfolioReport) *models.Insight {
			share, ok := zoneShare(r, models.ZoneNeverActivated)
			if !ok || share <= 20 {
				return nil
			}
			return &models.Insight{
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("%.1f%% of consumers never produced a repayment attempt", share),
			}
		},
	},
	{
		code: "funnel_bottleneck",
		apply: func(r *models.PortfolioReport) *models.Insight {
			if len(r.Funnel) == 0 {
				return nil
			}
			worst := -1
			for i, stage := range r.Funnel {
				if worst == -1 || stage.DropOffPct > r.Funnel[worst].DropOffPct {
					worst = i
				}
			}
			if worst <= 0 || r.Funnel[worst].DropOffPct <= 25 {
				return nil
			}
			return &models.Insight{
				Severity: models.SeverityWarning,
				Message: fmt.Sprintf("funnel bottleneck at %s: %.1f%% drop-off",
					r.Funnel[worst].Stage, r.Funnel[worst].DropOffPct),
			}
		},
	},
	{
		code: "market_position",
		apply: func(r *models.PortfolioReport) *models.Insight {
			if r.Ranking == nil {
				return nil
			}
			switch {
			case r.Ranking.Rank <= 3:
				return &models.Insight{
					Severity: models.SeverityInfo,
					Message: fmt.Sprintf("portfolio ranks #%d of %d providers in the %s market",
						r.Ranking.Rank, r.Ranking.ProviderCount, r.Ranking.Market),
				}
			case r.Ranking.Rank >= r.Ranking.ProviderCount-1:
				return &models.Insight{
					Severity: models.SeverityWarning,
					Message: fmt.Sprintf("portfolio ranks #%d of %d providers in the %s market",
						r.Ranking.Rank, r.Ranking.ProviderCount, r.Ranking.Market),
				}
			}
			return nil
		},
	},
}

func zoneShare(r *models.PortfolioReport, zone models.ZoneKey) (float64, bool) {
	if r.Zones == nil {
		return 0, false
	}
	for _, zs := range r.Zones.Zones {
		if zs.Zone == zone {
			return zs.SharePct, true
		}
	}
	return 0, false
}

// GenerateInsights projects the computed report sections through the rule
// table, emitting at most max findings in rule order.
func GenerateInsights(r *models.PortfolioReport, max int) []models.Insight {
	var insights []models.Insight
	for _, rule := range insightRules {
		if len(insights) >= max {
			break
		}
		if finding := rule.apply(r); finding != nil {
			finding.Code = rule.code
			insights = append(insights, *finding)
		}
	}
	return insights
}
