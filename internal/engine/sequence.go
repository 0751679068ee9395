package engine

import (
	"fmt"
	"sort"

	"bnpl-portfolio-engine/internal/models"
	"bnpl-portfolio-engine/internal/rowset"
)

// decodeAttempts extracts collection attempts from a source row set. The
// second return value carries the missing canonical fields when the row set
// cannot support sequence building.
func decodeAttempts(rs *rowset.RowSet) ([]models.CollectionAttempt, error) {
	if rs.Len() == 0 {
		return nil, nil
	}

	resolver := rowset.NewResolver(rs.Columns)
	instalmentCol, ok := resolver.Resolve(rowset.FieldInstalmentID)
	if !ok {
		return nil, fmt.Errorf("attempts: cannot resolve %s", rowset.FieldInstalmentID)
	}
	statusCol, ok := resolver.Resolve(rowset.FieldStatus)
	if !ok {
		return nil, fmt.Errorf("attempts: cannot resolve %s", rowset.FieldStatus)
	}
	timeCol, ok := resolver.Resolve(rowset.FieldTimestamp)
	if !ok {
		return nil, fmt.Errorf("attempts: cannot resolve %s", rowset.FieldTimestamp)
	}
	idCol, _ := resolver.Resolve(rowset.FieldID)
	// Type is a refinement: without it no attempt can be excluded as a
	// checkout charge, so every row counts as a repayment attempt.
	typeCol, hasType := resolver.Resolve(rowset.FieldType)

	attempts := make([]models.CollectionAttempt, 0, rs.Len())
	for _, row := range rs.Rows {
		instalmentID, ok := row.String(instalmentCol)
		if !ok || instalmentID == "" {
			continue
		}
		rawStatus, ok := row.String(statusCol)
		if !ok {
			continue
		}

		attempt := models.CollectionAttempt{
			InstalmentID: instalmentID,
			Status:       models.NormalizeAttemptStatus(rawStatus),
			Type:         models.AttemptTypeRetry,
		}
		if idCol != "" {
			attempt.ID, _ = row.String(idCol)
		}
		if hasType {
			if rawType, ok := row.String(typeCol); ok {
				attempt.Type = models.NormalizeAttemptType(rawType)
			}
		}
		if executedAt, ok := row.Time(timeCol); ok {
			attempt.ExecutedAt = &executedAt
		}
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}

// decodeInstalments extracts instalments from a source row set.
func decodeInstalments(rs *rowset.RowSet) ([]models.Instalment, error) {
	if rs.Len() == 0 {
		return nil, nil
	}

	resolver := rowset.NewResolver(rs.Columns)
	idCol, ok := resolver.Resolve(rowset.FieldID)
	if !ok {
		return nil, fmt.Errorf("instalments: cannot resolve %s", rowset.FieldID)
	}
	planCol, ok := resolver.Resolve(rowset.FieldPlanID)
	if !ok {
		return nil, fmt.Errorf("instalments: cannot resolve %s", rowset.FieldPlanID)
	}
	amountCol, _ := resolver.Resolve(rowset.FieldAmount)
	dueCol, _ := resolver.Resolve(rowset.FieldDueDate)

	instalments := make([]models.Instalment, 0, rs.Len())
	for _, row := range rs.Rows {
		id, ok := row.String(idCol)
		if !ok || id == "" {
			continue
		}
		planID, ok := row.String(planCol)
		if !ok || planID == "" {
			continue
		}
		inst := models.Instalment{ID: id, PlanID: planID}
		if amountCol != "" {
			inst.Amount, _ = row.Float(amountCol)
		}
		if dueCol != "" {
			inst.DueDate, _ = row.Time(dueCol)
		}
		instalments = append(instalments, inst)
	}
	return instalments, nil
}

// decodePlans extracts instalment plans from a source row set.
func decodePlans(rs *rowset.RowSet) ([]models.InstalmentPlan, error) {
	if rs.Len() == 0 {
		return nil, nil
	}

	resolver := rowset.NewResolver(rs.Columns)
	idCol, ok := resolver.Resolve(rowset.FieldID)
	if !ok {
		return nil, fmt.Errorf("plans: cannot resolve %s", rowset.FieldID)
	}
	consumerCol, ok := resolver.Resolve(rowset.FieldConsumerID)
	if !ok {
		return nil, fmt.Errorf("plans: cannot resolve %s", rowset.FieldConsumerID)
	}
	merchantCol, _ := resolver.Resolve(rowset.FieldMerchant)
	amountCol, _ := resolver.Resolve(rowset.FieldAmount)
	statusCol, _ := resolver.Resolve(rowset.FieldStatus)
	createdCol, _ := resolver.Resolve(rowset.FieldTimestamp)

	plans := make([]models.InstalmentPlan, 0, rs.Len())
	for _, row := range rs.Rows {
		id, ok := row.String(idCol)
		if !ok || id == "" {
			continue
		}
		consumerID, ok := row.String(consumerCol)
		if !ok || consumerID == "" {
			continue
		}
		plan := models.InstalmentPlan{ID: id, ConsumerID: consumerID}
		if merchantCol != "" {
			plan.MerchantName, _ = row.String(merchantCol)
		}
		if amountCol != "" {
			plan.TotalAmount, _ = row.Float(amountCol)
		}
		if statusCol != "" {
			if rawStatus, ok := row.String(statusCol); ok {
				plan.Status = models.NormalizePlanStatus(rawStatus)
			}
		}
		if createdCol != "" {
			plan.CreatedAt, _ = row.Time(createdCol)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// BuildSequences reconstructs the per-instalment repayment-attempt sequences
// for a window. Initial attempts are checkout charges, not repayments, and
// are excluded; attempts without an executed-at timestamp or outside the
// window do not qualify. Instalments with no qualifying attempts are excluded
// rather than zero-filled. Ties on identical timestamps keep source row order.
func BuildSequences(
	attempts []models.CollectionAttempt,
	instalments []models.Instalment,
	plans []models.InstalmentPlan,
	window models.Window,
) []models.AttemptSequence {
	instalmentByID := make(map[string]models.Instalment, len(instalments))
	for _, inst := range instalments {
		instalmentByID[inst.ID] = inst
	}
	planByID := make(map[string]models.InstalmentPlan, len(plans))
	for _, plan := range plans {
		planByID[plan.ID] = plan
	}

	grouped := make(map[string][]models.CollectionAttempt)
	var order []string
	for _, attempt := range attempts {
		if attempt.Type == models.AttemptTypeInitial {
			continue
		}
		if attempt.ExecutedAt == nil || !window.Contains(*attempt.ExecutedAt) {
			continue
		}
		if _, seen := grouped[attempt.InstalmentID]; !seen {
			order = append(order, attempt.InstalmentID)
		}
		grouped[attempt.InstalmentID] = append(grouped[attempt.InstalmentID], attempt)
	}

	sequences := make([]models.AttemptSequence, 0, len(grouped))
	for _, instalmentID := range order {
		seq := grouped[instalmentID]
		sort.SliceStable(seq, func(i, j int) bool {
			return seq[i].ExecutedAt.Before(*seq[j].ExecutedAt)
		})

		inst, ok := instalmentByID[instalmentID]
		if !ok {
			// No instalment record means no plan, consumer or merchant to
			// attribute the sequence to.
			continue
		}
		plan, ok := planByID[inst.PlanID]
		if !ok {
			continue
		}

		sequences = append(sequences, models.AttemptSequence{
			InstalmentID:          instalmentID,
			PlanID:                plan.ID,
			ConsumerID:            plan.ConsumerID,
			MerchantName:          plan.MerchantName,
			Amount:                inst.Amount,
			Attempts:              seq,
			FirstAttemptSucceeded: seq[0].Status == models.AttemptStatusCompleted,
			AttemptCount:          len(seq),
		})
	}
	return sequences
}
