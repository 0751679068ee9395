// Package models defines the data structures for the portfolio intelligence engine.
package models

// FunnelStageKey identifies one step of the signup-to-first-payment funnel.
type FunnelStageKey string

const (
	StageSignedUp             FunnelStageKey = "signed_up"
	StageKycCompleted         FunnelStageKey = "kyc_completed"
	StageCreditCheckCompleted FunnelStageKey = "credit_check_completed"
	StagePlanCreation         FunnelStageKey = "plan_creation"
	StageInitialCollection    FunnelStageKey = "initial_collection"
)

// FunnelStageOrder is the fixed stage sequence. Stage counts are sourced
// independently and clamped downstream so the sequence stays non-increasing.
var FunnelStageOrder = []FunnelStageKey{
	StageSignedUp,
	StageKycCompleted,
	StageCreditCheckCompleted,
	StagePlanCreation,
	StageInitialCollection,
}

// FunnelStage is one computed step of the conversion funnel.
type FunnelStage struct {
	Stage         FunnelStageKey `json:"stage"`
	Count         int64          `json:"count"`
	RawCount      int64          `json:"raw_count"`
	DropOffCount  int64          `json:"drop_off_count"`
	DropOffPct    float64        `json:"drop_off_pct"`
	ConversionPct float64        `json:"conversion_pct"`
}
