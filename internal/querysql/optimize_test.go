package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tannerhall/sift/internal/filter"
)

func TestOptimize_CollapsesDuplicateAnd(t *testing.T) {
	q := CompiledQuery{
		Text:   `SELECT *, 1 AS relevance FROM alumni WHERE last_name LIKE ? ESCAPE '\' AND last_name LIKE ? ESCAPE '\' ORDER BY id ASC COLLATE BINARY`,
		Params: []any{"%hall%", "%hall%"},
	}

	got := Optimize(q)
	assert.Equal(t,
		`SELECT *, 1 AS relevance FROM alumni WHERE last_name LIKE ? ESCAPE '\' ORDER BY id ASC COLLATE BINARY`,
		got.Text)
	assert.Equal(t, []any{"%hall%"}, got.Params)
	assert.Equal(t, len(got.Params), got.PlaceholderCount())
}

func TestOptimize_CollapsesDuplicateOr(t *testing.T) {
	q := CompiledQuery{
		Text:   "SELECT *, 1 AS relevance FROM alumni WHERE city = ? OR city = ? OR deceased = ? ORDER BY id ASC COLLATE BINARY",
		Params: []any{"Boston", "Boston", true},
	}

	got := Optimize(q)
	assert.Equal(t,
		"SELECT *, 1 AS relevance FROM alumni WHERE city = ? OR deceased = ? ORDER BY id ASC COLLATE BINARY",
		got.Text)
	assert.Equal(t, []any{"Boston", true}, got.Params)
}

func TestOptimize_DifferentValuesAreKept(t *testing.T) {
	q := CompiledQuery{
		Text:   "SELECT *, 1 AS relevance FROM alumni WHERE city = ? OR city = ? ORDER BY id ASC COLLATE BINARY",
		Params: []any{"Boston", "Chicago"},
	}

	// Same fragment text, different bound values: not a duplicate.
	assert.Equal(t, q, Optimize(q))
}

func TestOptimize_DifferentParamTypesAreKept(t *testing.T) {
	q := CompiledQuery{
		Text:   "SELECT *, 1 AS relevance FROM alumni WHERE grad_year >= ? OR grad_year >= ? ORDER BY id ASC COLLATE BINARY",
		Params: []any{1925.0, "1925"},
	}

	// The number 1925 and the string "1925" render identically but bind
	// differently; the key must keep the type.
	assert.Equal(t, q, Optimize(q))
}

func TestOptimize_MultiValueFragments(t *testing.T) {
	q := CompiledQuery{
		Text:   "SELECT *, 1 AS relevance FROM alumni WHERE (grad_year >= ? AND grad_year <= ?) AND (grad_year >= ? AND grad_year <= ?) ORDER BY id ASC COLLATE BINARY",
		Params: []any{1925.0, 1940.0, 1925.0, 1940.0},
	}

	got := Optimize(q)
	assert.Equal(t,
		"SELECT *, 1 AS relevance FROM alumni WHERE (grad_year >= ? AND grad_year <= ?) ORDER BY id ASC COLLATE BINARY",
		got.Text)
	assert.Equal(t, []any{1925.0, 1940.0}, got.Params)
}

func TestOptimize_RecursesIntoSubtrees(t *testing.T) {
	// Tree-compiled shape: a parenthesized OR group with an internal
	// duplicate, joined to another predicate at the top level.
	q := CompiledQuery{
		Text:   "SELECT *, 1 AS relevance FROM alumni WHERE (city = ? OR city = ?) AND deceased = ? ORDER BY id ASC COLLATE BINARY",
		Params: []any{"Boston", "Boston", false},
	}

	got := Optimize(q)
	assert.Equal(t,
		"SELECT *, 1 AS relevance FROM alumni WHERE (city = ?) AND deceased = ? ORDER BY id ASC COLLATE BINARY",
		got.Text)
	assert.Equal(t, []any{"Boston", false}, got.Params)
}

func TestOptimize_Idempotent(t *testing.T) {
	testCases := []struct {
		name string
		q    CompiledQuery
	}{
		{
			name: "with duplicates",
			q: CompiledQuery{
				Text:   "SELECT *, 1 AS relevance FROM alumni WHERE city = ? AND city = ? AND deceased = ? ORDER BY id ASC COLLATE BINARY",
				Params: []any{"Boston", "Boston", true},
			},
		},
		{
			name: "already minimal",
			q: CompiledQuery{
				Text:   "SELECT *, 1 AS relevance FROM alumni WHERE city = ? ORDER BY id ASC COLLATE BINARY",
				Params: []any{"Boston"},
			},
		},
		{
			name: "nested duplicate",
			q: CompiledQuery{
				Text:   "SELECT *, 1 AS relevance FROM alumni WHERE (city = ? OR city = ?) ORDER BY id ASC COLLATE BINARY",
				Params: []any{"Boston", "Boston"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			once := Optimize(tc.q)
			twice := Optimize(once)
			assert.Equal(t, once, twice)
		})
	}
}

func TestOptimize_NoWhereClausePassesThrough(t *testing.T) {
	q := CompiledQuery{Text: "SELECT *, 1 AS relevance FROM alumni ORDER BY id ASC COLLATE BINARY"}
	assert.Equal(t, q, Optimize(q))
}

func TestOptimize_CountStatements(t *testing.T) {
	q := CompiledQuery{
		Text:   "SELECT COUNT(*) AS match_count FROM alumni WHERE city = ? AND city = ?",
		Params: []any{"Boston", "Boston"},
	}

	got := Optimize(q)
	assert.Equal(t, "SELECT COUNT(*) AS match_count FROM alumni WHERE city = ?", got.Text)
	assert.Equal(t, []any{"Boston"}, got.Params)
}

func TestOptimize_MisalignedQueryPassesThrough(t *testing.T) {
	// A query whose params do not line up with its placeholders did not
	// come from this compiler; the optimizer refuses to touch it.
	q := CompiledQuery{
		Text:   "SELECT *, 1 AS relevance FROM alumni WHERE city = ? ORDER BY id ASC COLLATE BINARY",
		Params: []any{"Boston", "stray"},
	}
	assert.Equal(t, q, Optimize(q))
}

func TestOptimize_EndToEndWithCompiler(t *testing.T) {
	compiler := testCompiler(t)

	cfg := filter.Config{
		Type:     filter.TypeAlumni,
		Operator: filter.And,
		TextFilters: []filter.TextFilter{
			{Field: "last_name", Value: "hall", Match: filter.MatchContains},
			{Field: "last_name", Value: "hall", Match: filter.MatchContains},
		},
	}

	q, err := compiler.Compile(cfg)
	require.NoError(t, err)
	require.Len(t, q.Params, 2)

	got := Optimize(q)
	assert.Len(t, got.Params, 1)
	assert.Equal(t, 1, got.PlaceholderCount())
	assert.Contains(t, got.Text, "ORDER BY id ASC COLLATE BINARY")
}
