package harness

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/querysql"
	"github.com/tannerhall/sift/internal/schema"
)

// The golden fixtures pin the exact compiled output (statement text plus
// the ordered, typed params) for one representative query per shape.
// Any drift in fragment text, placeholder order, or param binding shows up
// as a fixture diff.

func TestGolden_FlatAllFilterKinds(t *testing.T) {
	compiler := querysql.NewCompiler(schema.MustLoad())

	q, err := compiler.Compile(filter.Config{
		Type:     filter.TypeAlumni,
		Operator: filter.And,
		TextFilters: []filter.TextFilter{
			{Field: "city", Value: "Boston", Match: filter.MatchEquals, CaseSensitive: false},
		},
		RangeFilters: []filter.RangeFilter{
			{Field: "grad_year", Min: filter.Float(1925), Max: filter.Float(1940)},
		},
		DateFilters: []filter.DateFilter{
			{Field: "grad_date", Start: "1925-01-01", End: "1940-12-31"},
		},
		BooleanFilters: []filter.BooleanFilter{
			{Field: "deceased", Value: false},
		},
	})
	require.NoError(t, err)

	AssertGoldenSQL(t, "flat_all_filter_kinds", q)
}

func TestGolden_TextEscaping(t *testing.T) {
	compiler := querysql.NewCompiler(schema.MustLoad())

	q, err := compiler.Compile(filter.Config{
		Type:     filter.TypePublication,
		Operator: filter.Or,
		TextFilters: []filter.TextFilter{
			{Field: "title", Value: `50%_or\more`, Match: filter.MatchContains, CaseSensitive: false},
			{Field: "author", Value: "*a?", Match: filter.MatchContains, CaseSensitive: true},
		},
	})
	require.NoError(t, err)

	AssertGoldenSQL(t, "text_escaping", q)
}

func TestGolden_TreeFaculty(t *testing.T) {
	compiler := querysql.NewCompiler(schema.MustLoad())

	root := &filter.Branch{NodeID: "root", Op: filter.Or, Children: []filter.Node{
		&filter.Group{NodeID: "g1", Children: []filter.Node{
			&filter.Leaf{NodeID: "l1", Config: filter.Config{
				Type:     filter.TypeFaculty,
				Operator: filter.And,
				TextFilters: []filter.TextFilter{
					{Field: "department", Value: "History", Match: filter.MatchEquals, CaseSensitive: false},
				},
			}},
			&filter.Leaf{NodeID: "l2", Config: filter.Config{
				Type:     filter.TypeFaculty,
				Operator: filter.And,
				BooleanFilters: []filter.BooleanFilter{
					{Field: "emeritus", Value: false},
				},
			}},
		}},
		&filter.Leaf{NodeID: "l3", Config: filter.Config{
			Type:     filter.TypeFaculty,
			Operator: filter.And,
			TextFilters: []filter.TextFilter{
				{Field: "last_name", Value: "Quimby", Match: filter.MatchEquals, CaseSensitive: true},
			},
		}},
	}}

	q, err := compiler.CompileTree(root, filter.TypeFaculty)
	require.NoError(t, err)

	AssertGoldenSQL(t, "tree_faculty", q)
}

func TestGolden_CountVacuous(t *testing.T) {
	compiler := querysql.NewCompiler(schema.MustLoad())

	q, err := compiler.CompileCount(filter.Config{
		Type:     filter.TypePhoto,
		Operator: filter.And,
	})
	require.NoError(t, err)

	AssertGoldenSQL(t, "count_vacuous", q)
}

func TestGolden_OptimizedDuplicate(t *testing.T) {
	compiler := querysql.NewCompiler(schema.MustLoad())

	q, err := compiler.Compile(filter.Config{
		Type:     filter.TypeAlumni,
		Operator: filter.And,
		TextFilters: []filter.TextFilter{
			{Field: "last_name", Value: "hall", Match: filter.MatchContains, CaseSensitive: false},
			{Field: "last_name", Value: "hall", Match: filter.MatchContains, CaseSensitive: false},
		},
	})
	require.NoError(t, err)

	AssertGoldenSQL(t, "optimized_duplicate", querysql.Optimize(q))
}
