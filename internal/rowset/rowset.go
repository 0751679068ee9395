// Package rowset models the tabular input contract of the engine: row sets
// with named columns and a resolver that maps loosely-named source columns to
// canonical semantic fields.
package rowset

import (
	"strconv"
	"strings"
	"time"
)

// Canonical field names the resolver understands.
const (
	FieldID           = "id"
	FieldConsumerID   = "consumer_id"
	FieldPlanID       = "plan_id"
	FieldInstalmentID = "instalment_id"
	FieldMerchant     = "merchant"
	FieldStatus       = "status"
	FieldType         = "type"
	FieldAmount       = "amount"
	FieldTimestamp    = "timestamp"
	FieldDueDate      = "due_date"
)

// fieldAliases maps each canonical field to its accepted source column names,
// in priority order. Matching is case- and spacing-insensitive; after the
// exact pass, each alias is also tried as a substring.
var fieldAliases = map[string][]string{
	FieldID:           {"ID"},
	FieldConsumerID:   {"CONSUMER_ID", "CUSTOMER_ID", "USER_ID"},
	FieldPlanID:       {"PLAN_ID", "AGREEMENT_ID"},
	FieldInstalmentID: {"INSTALMENT_ID", "INSTALLMENT_ID"},
	FieldMerchant:     {"MERCHANT_NAME", "MERCHANT", "STORE", "RETAILER"},
	FieldStatus:       {"STATUS", "STATE", "OUTCOME", "DECISION"},
	FieldType:         {"TYPE", "KIND", "CATEGORY"},
	FieldAmount:       {"AMOUNT", "VALUE", "TOTAL", "QUANTITY", "PRINCIPAL"},
	FieldTimestamp:    {"CREATED_AT", "EXECUTED_AT", "DATE"},
	FieldDueDate:      {"DUE_DATE", "DUE_AT", "SCHEDULED_DATE"},
}

// Row is one record keyed by source column name.
type Row map[string]interface{}

// RowSet is a bounded sequence of rows sharing one column list. Column order
// is never significant; fields are located through the Resolver.
type RowSet struct {
	Columns []string
	Rows    []Row
}

// New creates a row set with the given columns and no rows.
func New(columns ...string) *RowSet {
	return &RowSet{Columns: columns}
}

// Append adds one row given cell values in column order. Extra values are
// dropped, missing ones left unset.
func (rs *RowSet) Append(values ...interface{}) {
	row := make(Row, len(rs.Columns))
	for i, col := range rs.Columns {
		if i < len(values) {
			row[col] = values[i]
		}
	}
	rs.Rows = append(rs.Rows, row)
}

// Len returns the number of rows.
func (rs *RowSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Resolver maps canonical fields to the columns of one row set.
type Resolver struct {
	// normalized column name -> original column name, first occurrence wins
	byNormalized map[string]string
	normalized   []string
}

// NewResolver builds a resolver over a column list.
func NewResolver(columns []string) *Resolver {
	r := &Resolver{byNormalized: make(map[string]string, len(columns))}
	for _, col := range columns {
		norm := normalizeColumn(col)
		if _, seen := r.byNormalized[norm]; !seen {
			r.byNormalized[norm] = col
			r.normalized = append(r.normalized, norm)
		}
	}
	return r
}

// Resolve returns the source column carrying a canonical field, or ok=false
// when none matches. It never errors: absence propagates as a
// missing-capability signal that downstream components turn into a skipped
// metric.
func (r *Resolver) Resolve(field string) (string, bool) {
	aliases, known := fieldAliases[field]
	if !known {
		aliases = []string{field}
	}

	// Pass 1: exact case-insensitive match, in alias priority order.
	for _, alias := range aliases {
		if col, ok := r.byNormalized[normalizeColumn(alias)]; ok {
			return col, true
		}
	}

	// Pass 2: substring match, still in alias priority order.
	for _, alias := range aliases {
		needle := normalizeColumn(alias)
		for _, norm := range r.normalized {
			if strings.Contains(norm, needle) {
				return r.byNormalized[norm], true
			}
		}
	}

	return "", false
}

func normalizeColumn(col string) string {
	norm := strings.ToLower(strings.TrimSpace(col))
	norm = strings.ReplaceAll(norm, " ", "_")
	norm = strings.ReplaceAll(norm, "-", "_")
	return norm
}

// String reads a cell as a trimmed string.
func (row Row) String(column string) (string, bool) {
	v, ok := row[column]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case []byte:
		return strings.TrimSpace(string(s)), true
	default:
		return "", false
	}
}

// Float reads a cell as a float64, accepting numeric types and numeric
// strings.
func (row Row) Float(column string) (float64, bool) {
	v, ok := row[column]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int reads a cell as an int64.
func (row Row) Int(column string) (int64, bool) {
	f, ok := row.Float(column)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// timeLayouts are tried in order when a timestamp arrives as a string.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time reads a cell as a timestamp, accepting time.Time values and common
// string layouts.
func (row Row) Time(column string) (time.Time, bool) {
	v, ok := row[column]
	if !ok || v == nil {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
