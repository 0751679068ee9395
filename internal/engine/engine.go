package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bnpl-portfolio-engine/internal/models"
	"bnpl-portfolio-engine/internal/rowset"
	"bnpl-portfolio-engine/internal/utils"
)

// DataSource is the synchronous data-access collaborator. Every call may
// return an error in place of data; the engine degrades the dependent report
// section instead of failing.
type DataSource interface {
	CollectionAttempts(ctx context.Context, window models.Window) (*rowset.RowSet, error)
	Instalments(ctx context.Context) (*rowset.RowSet, error)
	Plans(ctx context.Context, window models.Window) (*rowset.RowSet, error)
	FunnelStageCount(ctx context.Context, stage models.FunnelStageKey, window models.Window) (int64, error)
	PortfolioMetrics(ctx context.Context, window models.Window) (*models.PortfolioMetrics, error)
}

// Engine runs the analysis pipeline. It holds no mutable state across
// invocations; concurrent BuildReport calls for different windows share
// nothing but the data source.
type Engine struct {
	src DataSource
	log *zap.Logger
}

// New creates an engine over a data source.
func New(src DataSource) *Engine {
	return &Engine{src: src, log: utils.GetLogger()}
}

// windowInputs are the decoded source facts of one analysis window.
type windowInputs struct {
	sequences []models.AttemptSequence
	plans     []models.InstalmentPlan
	personas  []models.ConsumerPersona
	values    map[string]float64
}

// BuildReport runs the full pipeline for one configuration. The returned
// error is non-nil only for invalid configuration; missing or unusable
// source data nils the dependent sections and records why.
func (e *Engine) BuildReport(ctx context.Context, cfg Config) (*models.PortfolioReport, error) {
	cfg = cfg.normalize()
	if cfg.Market == "" {
		cfg.Market = "domestic"
	}
	benchmark, err := models.LookupBenchmark(cfg.Market)
	if err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	report := &models.PortfolioReport{
		ReportID:      uuid.NewString(),
		Window:        cfg.Window,
		CompareWindow: cfg.CompareWindow,
		GeneratedAt:   time.Now().UTC(),
	}

	start := time.Now()
	e.log.Info("Starting portfolio analysis",
		zap.Time("from", cfg.Window.From),
		zap.Time("to", cfg.Window.To),
		zap.String("market", cfg.Market),
	)

	current := e.loadWindow(ctx, cfg, cfg.Window, report)
	if current != nil {
		report.Personas = current.personas
		e.log.Info("Stage complete: persona classification",
			zap.Int("sequences", len(current.sequences)),
			zap.Int("consumers", len(current.personas)),
		)

		e.aggregateZones(ctx, cfg, current, report)
		report.Merchants = AnalyzeMerchants(current.plans, current.personas, cfg.Fragility)
		if report.Merchants != nil {
			e.log.Info("Stage complete: merchant concentration",
				zap.Int("merchants", report.Merchants.MerchantCount),
				zap.Float64("hhi", report.Merchants.HHI),
			)
		}
	}

	report.Funnel = e.computeFunnel(ctx, cfg, report)
	e.scoreRanking(ctx, cfg, benchmark, report)

	report.Insights = GenerateInsights(report, cfg.MaxInsights)

	e.log.Info("Portfolio analysis complete",
		zap.String("report_id", report.ReportID),
		zap.Int("insights", len(report.Insights)),
		zap.Int("skipped_metrics", len(report.Skipped)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// Scenario recomputes the competitive ranking after hypothetically shifting
// one input metric. Configuration errors are fatal; unavailable metrics are
// reported as such.
func (e *Engine) Scenario(ctx context.Context, cfg Config, lever models.ScenarioLever) (*models.ScenarioResult, error) {
	cfg = cfg.normalize()
	if cfg.Market == "" {
		cfg.Market = "domestic"
	}
	benchmark, err := models.LookupBenchmark(cfg.Market)
	if err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	metrics, err := e.src.PortfolioMetrics(ctx, cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("portfolio metrics unavailable: %w", err)
	}

	result := ProjectScenario(*metrics, benchmark, cfg.Ranking, lever)
	return &result, nil
}

// loadWindow fetches and decodes the behavioral inputs of one window. A nil
// return means personas and everything downstream of them are unavailable;
// the reason has already been recorded on the report.
func (e *Engine) loadWindow(ctx context.Context, cfg Config, window models.Window, report *models.PortfolioReport) *windowInputs {
	plansRS, err := e.src.Plans(ctx, window)
	if err != nil {
		e.skip(report, "personas", models.SkipSourceUnavailable, err.Error())
		e.skip(report, "merchants", models.SkipSourceUnavailable, err.Error())
		return nil
	}
	plans, err := decodePlans(plansRS)
	if err != nil {
		e.skip(report, "personas", models.SkipMissingCapability, err.Error())
		e.skip(report, "merchants", models.SkipMissingCapability, err.Error())
		return nil
	}

	inputs := &windowInputs{plans: plans, values: make(map[string]float64, len(plans))}
	for _, plan := range plans {
		inputs.values[plan.ConsumerID] += plan.TotalAmount
	}

	attemptsRS, err := e.src.CollectionAttempts(ctx, window)
	if err != nil {
		e.skip(report, "attempt_sequences", models.SkipSourceUnavailable, err.Error())
	} else {
		attempts, decodeErr := decodeAttempts(attemptsRS)
		if decodeErr != nil {
			e.skip(report, "attempt_sequences", models.SkipMissingCapability, decodeErr.Error())
		} else {
			instalments := e.loadInstalments(ctx, report)
			inputs.sequences = BuildSequences(attempts, instalments, plans, window)
		}
	}

	inputs.personas = ClassifyConsumers(inputs.sequences, plans, cfg.Thresholds)
	return inputs
}

func (e *Engine) loadInstalments(ctx context.Context, report *models.PortfolioReport) []models.Instalment {
	rs, err := e.src.Instalments(ctx)
	if err != nil {
		e.skip(report, "instalments", models.SkipSourceUnavailable, err.Error())
		return nil
	}
	instalments, err := decodeInstalments(rs)
	if err != nil {
		e.skip(report, "instalments", models.SkipMissingCapability, err.Error())
		return nil
	}
	return instalments
}

func (e *Engine) aggregateZones(ctx context.Context, cfg Config, current *windowInputs, report *models.PortfolioReport) {
	var previous *windowInputs
	if cfg.CompareWindow != nil {
		previous = e.loadCompareWindow(ctx, cfg, *cfg.CompareWindow)
	}

	var prevPersonas []models.ConsumerPersona
	var prevValues map[string]float64
	if previous != nil {
		prevPersonas = previous.personas
		prevValues = previous.values
	}

	report.Zones = AggregateZones(
		current.personas, prevPersonas,
		current.values, prevValues,
		cfg.WeightByValue, cfg.MinDriftCohort,
	)
	if report.Zones == nil {
		e.skip(report, "macro_zones", models.SkipInsufficientData, "no weighted consumers in window")
		return
	}
	if cfg.CompareWindow != nil && !report.Zones.DriftAvailable {
		e.skip(report, "zone_drift", models.SkipInsufficientData,
			fmt.Sprintf("fewer than %d consumers in one of the comparison windows", cfg.MinDriftCohort))
	}
	e.log.Info("Stage complete: macro-zone aggregation",
		zap.Int("zones", len(report.Zones.Zones)),
		zap.Bool("drift", report.Zones.DriftAvailable),
	)
}

// loadCompareWindow is loadWindow without skip records for the secondary
// window: a missing comparison degrades drift only, never the primary
// sections.
func (e *Engine) loadCompareWindow(ctx context.Context, cfg Config, window models.Window) *windowInputs {
	plansRS, err := e.src.Plans(ctx, window)
	if err != nil {
		return nil
	}
	plans, err := decodePlans(plansRS)
	if err != nil {
		return nil
	}

	inputs := &windowInputs{plans: plans, values: make(map[string]float64, len(plans))}
	for _, plan := range plans {
		inputs.values[plan.ConsumerID] += plan.TotalAmount
	}

	if attemptsRS, err := e.src.CollectionAttempts(ctx, window); err == nil {
		if attempts, decodeErr := decodeAttempts(attemptsRS); decodeErr == nil {
			var instalments []models.Instalment
			if rs, err := e.src.Instalments(ctx); err == nil {
				instalments, _ = decodeInstalments(rs)
			}
			inputs.sequences = BuildSequences(attempts, instalments, plans, window)
		}
	}

	inputs.personas = ClassifyConsumers(inputs.sequences, plans, cfg.Thresholds)
	return inputs
}

func (e *Engine) computeFunnel(ctx context.Context, cfg Config, report *models.PortfolioReport) []models.FunnelStage {
	counts := make([]StageCount, 0, len(models.FunnelStageOrder))
	for _, stage := range models.FunnelStageOrder {
		count, err := e.src.FunnelStageCount(ctx, stage, cfg.Window)
		if err != nil {
			e.skip(report, fmt.Sprintf("funnel_stage_%s", stage), models.SkipSourceUnavailable, err.Error())
			counts = append(counts, StageCount{Stage: stage})
			continue
		}
		counts = append(counts, StageCount{Stage: stage, Count: count, Available: true})
	}

	stages := ComputeFunnel(counts)
	if len(stages) == 0 {
		e.skip(report, "funnel", models.SkipSourceUnavailable, "no funnel stage source available")
		return nil
	}
	e.log.Info("Stage complete: funnel", zap.Int("stages", len(stages)))
	return stages
}

func (e *Engine) scoreRanking(ctx context.Context, cfg Config, benchmark models.BenchmarkProfile, report *models.PortfolioReport) {
	metrics, err := e.src.PortfolioMetrics(ctx, cfg.Window)
	if err != nil {
		e.skip(report, "ranking", models.SkipSourceUnavailable, err.Error())
		return
	}
	ranking := ScoreRanking(*metrics, benchmark, cfg.Ranking)
	report.Ranking = &ranking
	e.log.Info("Stage complete: competitive ranking",
		zap.Float64("composite", ranking.CompositeScore),
		zap.Int("rank", ranking.Rank),
	)
}

func (e *Engine) skip(report *models.PortfolioReport, metric string, reason models.SkipReason, detail string) {
	report.Skipped = append(report.Skipped, models.SkippedMetric{
		Metric: metric,
		Reason: reason,
		Detail: detail,
	})
	e.log.Warn("Metric skipped",
		zap.String("metric", metric),
		zap.String("reason", string(reason)),
		zap.String("detail", detail),
	)
}
