// Package database provides the data-access collaborator of the portfolio
// intelligence engine: a PostgreSQL-backed source of tabular row sets.
package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bnpl-portfolio-engine/internal/models"
	"bnpl-portfolio-engine/internal/rowset"
	"bnpl-portfolio-engine/internal/utils"
)

// SourceDescriptor names one candidate query for a logical input. Sources
// are tried in declared order; the fallback chain is a visible contract, not
// implicit control flow.
type SourceDescriptor struct {
	Name  string
	Query string
}

// FetchRowSet iterates a descriptor list and returns the row set of the
// first source that answers. Column names travel with the rows so the engine
// can resolve fields regardless of source spelling; only when every source
// fails does the logical input count as unavailable.
func FetchRowSet(ctx context.Context, db *DB, sources []SourceDescriptor, args ...interface{}) (*rowset.RowSet, error) {
	log := utils.GetLogger()
	var lastErr error
	for _, source := range sources {
		rows, err := db.QueryContext(ctx, source.Query, args...)
		if err != nil {
			log.Debug("Source unusable, trying next",
				zap.String("source", source.Name),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		fields := rows.FieldDescriptions()
		columns := make([]string, len(fields))
		for i, fd := range fields {
			columns[i] = fd.Name
		}

		rs := rowset.New(columns...)
		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				lastErr = err
				break
			}
			rs.Append(values...)
		}
		rowsErr := rows.Err()
		rows.Close()
		if rowsErr != nil {
			lastErr = rowsErr
			continue
		}

		log.Debug("Source answered",
			zap.String("source", source.Name),
			zap.Int("rows", rs.Len()),
		)
		return rs, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, lastErr)
	}
	return nil, models.ErrSourceUnavailable
}

// CountFirst runs a descriptor list of single-value count queries and
// returns the first answer.
func CountFirst(ctx context.Context, db *DB, sources []SourceDescriptor, args ...interface{}) (int64, error) {
	var lastErr error
	for _, source := range sources {
		var count int64
		if err := db.QueryRowContext(ctx, source.Query, args...).Scan(&count); err != nil {
			lastErr = err
			continue
		}
		return count, nil
	}
	if lastErr != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, lastErr)
	}
	return 0, models.ErrSourceUnavailable
}
