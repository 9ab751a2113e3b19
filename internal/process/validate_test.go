package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/schema"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.Load()
	require.NoError(t, err)
	return reg
}

func TestValidate_ValidConfig(t *testing.T) {
	reg := testRegistry(t)

	cfg := filter.Config{
		Type:     filter.TypeAlumni,
		Operator: filter.And,
		TextFilters: []filter.TextFilter{
			{Field: "last_name", Value: "Hall", Match: filter.MatchContains},
		},
		RangeFilters: []filter.RangeFilter{
			{Field: "grad_year", Min: filter.Float(1930), Max: filter.Float(1940)},
		},
		DateFilters: []filter.DateFilter{
			{Field: "grad_date", Start: "1937-06-01", End: "1937-06-30"},
		},
		BooleanFilters: []filter.BooleanFilter{
			{Field: "deceased", Value: false},
		},
	}

	result := Validate(reg, cfg)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	reg := testRegistry(t)

	// Every category broken at once: validation must report all of them
	// rather than stopping at the first.
	cfg := filter.Config{
		Type:     filter.TypeAlumni,
		Operator: "NOT",
		TextFilters: []filter.TextFilter{
			{Field: "last_name", Value: "x", Match: "fuzzy"},
		},
		RangeFilters: []filter.RangeFilter{
			{Field: "grad_year", Min: filter.Float(50), Max: filter.Float(10)},
		},
		DateFilters: []filter.DateFilter{
			{Field: "grad_date", Start: "06/01/1937"},
		},
	}

	result := Validate(reg, cfg)
	require.False(t, result.Valid)

	codes := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		codes = append(codes, e.Code)
	}
	assert.ElementsMatch(t, []string{
		ErrInvalidCombinator,
		ErrInvalidMatchType,
		ErrInvertedRange,
		ErrUnparsableDate,
	}, codes)
}

func TestValidate_ErrorCodes(t *testing.T) {
	reg := testRegistry(t)

	testCases := []struct {
		name     string
		cfg      filter.Config
		wantCode string
	}{
		{
			name:     "unknown content type",
			cfg:      filter.Config{Type: "yearbooks", Operator: filter.And},
			wantCode: ErrUnknownContentType,
		},
		{
			name:     "invalid combinator",
			cfg:      filter.Config{Type: filter.TypeAlumni, Operator: "XOR"},
			wantCode: ErrInvalidCombinator,
		},
		{
			name: "unknown field is rejected",
			cfg: filter.Config{
				Type:     filter.TypeAlumni,
				Operator: filter.And,
				TextFilters: []filter.TextFilter{
					{Field: "last_name; DROP TABLE alumni--", Value: "x", Match: filter.MatchEquals},
				},
			},
			wantCode: ErrUnknownField,
		},
		{
			name: "text filter on number field",
			cfg: filter.Config{
				Type:     filter.TypeAlumni,
				Operator: filter.And,
				TextFilters: []filter.TextFilter{
					{Field: "grad_year", Value: "1937", Match: filter.MatchEquals},
				},
			},
			wantCode: ErrFieldKindMismatch,
		},
		{
			name: "invalid match type",
			cfg: filter.Config{
				Type:     filter.TypeAlumni,
				Operator: filter.And,
				TextFilters: []filter.TextFilter{
					{Field: "city", Value: "Boston", Match: "regex"},
				},
			},
			wantCode: ErrInvalidMatchType,
		},
		{
			name: "inverted range",
			cfg: filter.Config{
				Type:     filter.TypeAlumni,
				Operator: filter.And,
				RangeFilters: []filter.RangeFilter{
					{Field: "grad_year", Min: filter.Float(1950), Max: filter.Float(1940)},
				},
			},
			wantCode: ErrInvertedRange,
		},
		{
			name: "unparsable date",
			cfg: filter.Config{
				Type:     filter.TypeAlumni,
				Operator: filter.And,
				DateFilters: []filter.DateFilter{
					{Field: "grad_date", Start: "June 1st 1937"},
				},
			},
			wantCode: ErrUnparsableDate,
		},
		{
			name: "inverted date range",
			cfg: filter.Config{
				Type:     filter.TypeAlumni,
				Operator: filter.And,
				DateFilters: []filter.DateFilter{
					{Field: "grad_date", Start: "1940-01-01", End: "1937-01-01"},
				},
			},
			wantCode: ErrInvertedDateRange,
		},
		{
			name: "boolean filter on text field",
			cfg: filter.Config{
				Type:     filter.TypeAlumni,
				Operator: filter.Or,
				BooleanFilters: []filter.BooleanFilter{
					{Field: "city", Value: true},
				},
			},
			wantCode: ErrFieldKindMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(reg, tc.cfg)
			require.False(t, result.Valid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tc.wantCode, result.Errors[0].Code)
		})
	}
}

func TestValidate_EmptyTextValueIsNotAnError(t *testing.T) {
	reg := testRegistry(t)

	cfg := filter.Config{
		Type:     filter.TypeAlumni,
		Operator: filter.And,
		TextFilters: []filter.TextFilter{
			{Field: "city", Value: "   ", Match: filter.MatchContains},
		},
	}

	// Live-typing builders emit transient empty values; they are dropped
	// silently, never flagged.
	result := Validate(reg, cfg)
	assert.True(t, result.Valid)
}

func TestValidate_EmptyTextValueStillChecksField(t *testing.T) {
	reg := testRegistry(t)

	cfg := filter.Config{
		Type:     filter.TypeAlumni,
		Operator: filter.And,
		TextFilters: []filter.TextFilter{
			{Field: "nope", Value: "", Match: filter.MatchContains},
		},
	}

	result := Validate(reg, cfg)
	require.False(t, result.Valid)
	assert.Equal(t, ErrUnknownField, result.Errors[0].Code)
}

func TestValidate_OpenBoundsAreValid(t *testing.T) {
	reg := testRegistry(t)

	cfg := filter.Config{
		Type:     filter.TypeAlumni,
		Operator: filter.And,
		RangeFilters: []filter.RangeFilter{
			{Field: "grad_year", Min: filter.Float(1930)}, // max open
			{Field: "grad_year"},                          // both open, contributes nothing
		},
		DateFilters: []filter.DateFilter{
			{Field: "grad_date", End: "1940-12-31"}, // start open
		},
	}

	assert.True(t, Validate(reg, cfg).Valid)
}

func TestValidate_VacuousConfigIsValid(t *testing.T) {
	reg := testRegistry(t)

	result := Validate(reg, filter.Config{Type: filter.TypeFaculty, Operator: filter.And})
	assert.True(t, result.Valid)
}
