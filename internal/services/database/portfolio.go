// Package database provides the data-access collaborator of the portfolio
// intelligence engine: a PostgreSQL-backed source of tabular row sets.
package database

import (
	"context"
	"fmt"

	"bnpl-portfolio-engine/internal/models"
	"bnpl-portfolio-engine/internal/rowset"
)

// Candidate sources per logical input, in fallback order. The primary tables
// come from the operational schema; the CDC mirrors answer when the
// operational tables are not reachable.
var (
	attemptSources = []SourceDescriptor{
		{Name: "collection_attempts", Query: `SELECT * FROM collection_attempts WHERE executed_at >= $1 AND executed_at <= $2`},
		{Name: "bnpl_collections", Query: `SELECT * FROM bnpl_collections WHERE created_at >= $1 AND created_at <= $2`},
	}
	instalmentSources = []SourceDescriptor{
		{Name: "instalments", Query: `SELECT * FROM instalments`},
		{Name: "installments", Query: `SELECT * FROM installments`},
	}
	planSources = []SourceDescriptor{
		{Name: "instalment_plans", Query: `SELECT * FROM instalment_plans WHERE created_at >= $1 AND created_at <= $2`},
		{Name: "bnpl_transactions", Query: `SELECT * FROM bnpl_transactions WHERE created_at >= $1 AND created_at <= $2`},
	}

	funnelStageSources = map[models.FunnelStageKey][]SourceDescriptor{
		models.StageSignedUp: {
			{Name: "consumer_events.signed_up", Query: `SELECT COUNT(DISTINCT consumer_id) FROM consumer_events WHERE event_type = 'signed_up' AND occurred_at >= $1 AND occurred_at <= $2`},
			{Name: "consumers.created", Query: `SELECT COUNT(*) FROM consumers WHERE created_at >= $1 AND created_at <= $2`},
		},
		models.StageKycCompleted: {
			{Name: "consumer_events.kyc_completed", Query: `SELECT COUNT(DISTINCT consumer_id) FROM consumer_events WHERE event_type = 'kyc_completed' AND occurred_at >= $1 AND occurred_at <= $2`},
		},
		models.StageCreditCheckCompleted: {
			{Name: "consumer_events.credit_check_completed", Query: `SELECT COUNT(DISTINCT consumer_id) FROM consumer_events WHERE event_type = 'credit_check_completed' AND occurred_at >= $1 AND occurred_at <= $2`},
			{Name: "credit_checks", Query: `SELECT COUNT(DISTINCT consumer_id) FROM credit_checks WHERE completed_at >= $1 AND completed_at <= $2`},
		},
		models.StagePlanCreation: {
			{Name: "instalment_plans.consumers", Query: `SELECT COUNT(DISTINCT consumer_id) FROM instalment_plans WHERE created_at >= $1 AND created_at <= $2`},
		},
		models.StageInitialCollection: {
			{Name: "collection_attempts.initial", Query: `SELECT COUNT(DISTINCT p.consumer_id) FROM collection_attempts a JOIN instalments i ON a.instalment_id = i.id JOIN instalment_plans p ON i.plan_id = p.id WHERE a.attempt_type = 'initial' AND a.status = 'completed' AND a.executed_at >= $1 AND a.executed_at <= $2`},
		},
	}
)

// Store implements the engine's data-source contract over PostgreSQL.
type Store struct {
	db *DB
}

// NewStore creates a store over a database connection.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// CollectionAttempts returns the raw attempt rows touching the window.
func (s *Store) CollectionAttempts(ctx context.Context, window models.Window) (*rowset.RowSet, error) {
	return FetchRowSet(ctx, s.db, attemptSources, window.From, window.To)
}

// Instalments returns all instalment rows. Instalments are filtered through
// their attempts downstream, so no window predicate applies here.
func (s *Store) Instalments(ctx context.Context) (*rowset.RowSet, error) {
	return FetchRowSet(ctx, s.db, instalmentSources)
}

// Plans returns the instalment plans created inside the window.
func (s *Store) Plans(ctx context.Context, window models.Window) (*rowset.RowSet, error) {
	return FetchRowSet(ctx, s.db, planSources, window.From, window.To)
}

// FunnelStageCount returns the population of one funnel stage. Stages are
// sourced independently; a stage with no usable source is unavailable, not
// zero.
func (s *Store) FunnelStageCount(ctx context.Context, stage models.FunnelStageKey, window models.Window) (int64, error) {
	sources, ok := funnelStageSources[stage]
	if !ok {
		return 0, fmt.Errorf("%w: no source for stage %s", models.ErrSourceUnavailable, stage)
	}
	return CountFirst(ctx, s.db, sources, window.From, window.To)
}

// PortfolioMetrics computes the ranking inputs for the window: approval rate
// from the credit-check funnel, default rate and scale from plans, growth
// against the preceding window of equal length.
func (s *Store) PortfolioMetrics(ctx context.Context, window models.Window) (*models.PortfolioMetrics, error) {
	metrics := &models.PortfolioMetrics{}

	var planCount, defaultedCount int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status IN ('defaulted', 'written_off', 'charged_off'))
		FROM instalment_plans
		WHERE created_at >= $1 AND created_at <= $2`,
		window.From, window.To,
	).Scan(&planCount, &defaultedCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}
	metrics.ScaleVolume = float64(planCount)
	if planCount > 0 {
		metrics.DefaultRate = 100 * float64(defaultedCount) / float64(planCount)
	}

	checked, err := CountFirst(ctx, s.db, funnelStageSources[models.StageCreditCheckCompleted], window.From, window.To)
	if err == nil && checked > 0 {
		approved, err := CountFirst(ctx, s.db, funnelStageSources[models.StagePlanCreation], window.From, window.To)
		if err == nil {
			metrics.ApprovalRate = 100 * float64(approved) / float64(checked)
		}
	}

	span := window.To.Sub(window.From)
	prior := models.Window{From: window.From.Add(-span), To: window.From}
	var priorCount int64
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM instalment_plans
		WHERE created_at >= $1 AND created_at < $2`,
		prior.From, prior.To,
	).Scan(&priorCount)
	if err == nil && priorCount > 0 {
		metrics.GrowthRate = 100 * float64(planCount-priorCount) / float64(priorCount)
	}

	return metrics, nil
}
