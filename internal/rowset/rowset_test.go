package rowset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_ExactMatch(t *testing.T) {
	r := NewResolver([]string{"id", "consumer_id", "merchant_name", "status"})

	col, ok := r.Resolve(FieldConsumerID)
	require.True(t, ok)
	assert.Equal(t, "consumer_id", col)

	col, ok = r.Resolve(FieldMerchant)
	require.True(t, ok)
	assert.Equal(t, "merchant_name", col)
}

func TestResolver_AliasPriority(t *testing.T) {
	// customer_id and user_id are both aliases; customer_id is tried first
	r := NewResolver([]string{"user_id", "customer_id"})

	col, ok := r.Resolve(FieldConsumerID)
	require.True(t, ok)
	assert.Equal(t, "customer_id", col)
}

func TestResolver_CaseAndSpacingInsensitive(t *testing.T) {
	r := NewResolver([]string{"Customer ID", "MERCHANT-NAME", "  Status  "})

	col, ok := r.Resolve(FieldConsumerID)
	require.True(t, ok)
	assert.Equal(t, "Customer ID", col)

	col, ok = r.Resolve(FieldMerchant)
	require.True(t, ok)
	assert.Equal(t, "MERCHANT-NAME", col)

	col, ok = r.Resolve(FieldStatus)
	require.True(t, ok)
	assert.Equal(t, "  Status  ", col)
}

func TestResolver_SubstringFallback(t *testing.T) {
	r := NewResolver([]string{"final_decision_code", "txn_amount_cents"})

	col, ok := r.Resolve(FieldStatus)
	require.True(t, ok, "decision should resolve via substring")
	assert.Equal(t, "final_decision_code", col)

	col, ok = r.Resolve(FieldAmount)
	require.True(t, ok)
	assert.Equal(t, "txn_amount_cents", col)
}

func TestResolver_SoftMiss(t *testing.T) {
	r := NewResolver([]string{"foo", "bar"})

	col, ok := r.Resolve(FieldInstalmentID)
	assert.False(t, ok, "unresolvable field must miss softly")
	assert.Empty(t, col)
}

func TestResolver_BothSpellingsOfInstalment(t *testing.T) {
	for _, column := range []string{"instalment_id", "installment_id"} {
		r := NewResolver([]string{column})
		col, ok := r.Resolve(FieldInstalmentID)
		require.True(t, ok, column)
		assert.Equal(t, column, col)
	}
}

func TestRowSet_Append(t *testing.T) {
	rs := New("id", "amount")
	rs.Append("A1", 100.0)
	rs.Append("A2") // missing amount
	rs.Append("A3", 50.0, "extra value dropped")

	require.Equal(t, 3, rs.Len())

	v, ok := rs.Rows[0].Float("amount")
	require.True(t, ok)
	assert.Equal(t, 100.0, v)

	_, ok = rs.Rows[1].Float("amount")
	assert.False(t, ok)
}

func TestRowSet_NilSafeLen(t *testing.T) {
	var rs *RowSet
	assert.Equal(t, 0, rs.Len())
}

func TestRow_String(t *testing.T) {
	row := Row{"name": "  Klarna  ", "raw": []byte("bytes"), "num": 42}

	s, ok := row.String("name")
	require.True(t, ok)
	assert.Equal(t, "Klarna", s, "strings are trimmed")

	s, ok = row.String("raw")
	require.True(t, ok)
	assert.Equal(t, "bytes", s)

	_, ok = row.String("num")
	assert.False(t, ok, "non-string cells do not coerce")

	_, ok = row.String("missing")
	assert.False(t, ok)
}

func TestRow_Float(t *testing.T) {
	row := Row{"a": 12.5, "b": int64(7), "c": "  3.25 ", "d": "not a number", "e": nil}

	v, ok := row.Float("a")
	require.True(t, ok)
	assert.Equal(t, 12.5, v)

	v, ok = row.Float("b")
	require.True(t, ok)
	assert.Equal(t, 7.0, v)

	v, ok = row.Float("c")
	require.True(t, ok)
	assert.Equal(t, 3.25, v)

	_, ok = row.Float("d")
	assert.False(t, ok)

	_, ok = row.Float("e")
	assert.False(t, ok)
}

func TestRow_Time(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	row := Row{
		"native":  now,
		"pointer": &now,
		"rfc":     "2025-06-01T12:30:00Z",
		"sql":     "2025-06-01 12:30:00",
		"day":     "2025-06-01",
		"junk":    "yesterday",
	}

	for _, column := range []string{"native", "pointer", "rfc", "sql"} {
		v, ok := row.Time(column)
		require.True(t, ok, column)
		assert.True(t, v.Equal(now), column)
	}

	v, ok := row.Time("day")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), v)

	_, ok = row.Time("junk")
	assert.False(t, ok)
}
