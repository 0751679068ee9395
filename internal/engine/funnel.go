package engine

import "bnpl-portfolio-engine/internal/models"

// StageCount is one independently sourced funnel stage population. A stage a
// collaborator could not serve arrives with Available=false and is skipped
// rather than zero-filled.
type StageCount struct {
	Stage     models.FunnelStageKey
	Count     int64
	Available bool
}

// ComputeFunnel computes the conversion funnel over the available stages in
// their fixed order. Because each stage count comes from an independent
// source, a later stage may exceed an earlier one; counts are clamped to the
// preceding stage so the sequence is always monotonic non-increasing.
func ComputeFunnel(counts []StageCount) []models.FunnelStage {
	byStage := make(map[models.FunnelStageKey]StageCount, len(counts))
	for _, sc := range counts {
		byStage[sc.Stage] = sc
	}

	var stages []models.FunnelStage
	for _, key := range models.FunnelStageOrder {
		sc, ok := byStage[key]
		if !ok || !sc.Available {
			continue
		}
		raw := sc.Count
		if raw < 0 {
			raw = 0
		}

		stage := models.FunnelStage{Stage: key, Count: raw, RawCount: sc.Count}
		if len(stages) == 0 {
			stage.ConversionPct = 100
		} else {
			prev := stages[len(stages)-1].Count
			if stage.Count > prev {
				stage.Count = prev
			}
			stage.DropOffCount = prev - stage.Count
			if prev > 0 {
				stage.DropOffPct = round1(100 * float64(stage.DropOffCount) / float64(prev))
				stage.ConversionPct = round1(100 * float64(stage.Count) / float64(prev))
			}
		}
		stages = append(stages, stage)
	}
	return stages
}
