package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalExactBytes(t *testing.T) {
	cfg := Config{
		Type:     TypeAlumni,
		Operator: And,
		TextFilters: []TextFilter{
			{Field: "city", Value: "Boston", Match: MatchEquals},
		},
	}

	data, err := MarshalCanonical(cfg)
	require.NoError(t, err)
	assert.Equal(t,
		`{"booleanFilters":[],"dateFilters":[],"operator":"AND","rangeFilters":[],`+
			`"textFilters":[{"caseSensitive":false,"field":"city","matchType":"equals","value":"Boston"}],`+
			`"type":"alumni"}`,
		string(data))
}

func TestMarshalCanonicalBoundsAndKeyOrder(t *testing.T) {
	cfg := Config{
		Type:     TypeFaculty,
		Operator: Or,
		RangeFilters: []RangeFilter{
			{Field: "years_of_service", Min: Float(25), Max: Float(40)},
			{Field: "years_of_service", Min: Float(0.5)},
		},
		DateFilters: []DateFilter{
			{Field: "hire_date", Start: "1950-06-01"},
			{Field: "hire_date", Start: "1950-06-01", End: "1960-01-01"},
		},
		BooleanFilters: []BooleanFilter{
			{Field: "emeritus", Value: true},
		},
	}

	data, err := MarshalCanonical(cfg)
	require.NoError(t, err)
	assert.Equal(t,
		`{"booleanFilters":[{"field":"emeritus","value":true}],`+
			`"dateFilters":[{"field":"hire_date","start":"1950-06-01"},`+
			`{"end":"1960-01-01","field":"hire_date","start":"1950-06-01"}],`+
			`"operator":"OR",`+
			`"rangeFilters":[{"field":"years_of_service","max":40,"min":25},`+
			`{"field":"years_of_service","min":0.5}],`+
			`"textFilters":[],"type":"faculty"}`,
		string(data))
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	cfg := Config{
		Type:     TypePublication,
		Operator: And,
		TextFilters: []TextFilter{
			{Field: "title", Value: "Commencement", Match: MatchContains},
			{Field: "author", Value: "Hale", Match: MatchStartsWith, CaseSensitive: true},
		},
		RangeFilters: []RangeFilter{{Field: "page_count", Min: Float(4)}},
	}

	first, err := MarshalCanonical(cfg)
	require.NoError(t, err)
	second, err := MarshalCanonical(cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMarshalCanonicalNilAndEmptySlicesIdentical(t *testing.T) {
	withNil := Config{Type: TypeAlumni, Operator: And}
	withEmpty := Config{
		Type:           TypeAlumni,
		Operator:       And,
		TextFilters:    []TextFilter{},
		RangeFilters:   []RangeFilter{},
		DateFilters:    []DateFilter{},
		BooleanFilters: []BooleanFilter{},
	}

	a, err := MarshalCanonical(withNil)
	require.NoError(t, err)
	b, err := MarshalCanonical(withEmpty)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// U+00E9 (precomposed) and U+0065 U+0301 (e + combining acute) are the
	// same text; both must serialize to the same bytes.
	composed := Config{
		Type:     TypeAlumni,
		Operator: And,
		TextFilters: []TextFilter{
			{Field: "last_name", Value: "André", Match: MatchEquals},
		},
	}
	decomposed := Config{
		Type:     TypeAlumni,
		Operator: And,
		TextFilters: []TextFilter{
			{Field: "last_name", Value: "André", Match: MatchEquals},
		},
	}

	a, err := MarshalCanonical(composed)
	require.NoError(t, err)
	b, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	cfg := Config{
		Type:     TypePublication,
		Operator: And,
		TextFilters: []TextFilter{
			{Field: "title", Value: `Alumni & Friends <Special>`, Match: MatchContains},
		},
	}

	data, err := MarshalCanonical(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `Alumni & Friends <Special>`)
	assert.NotContains(t, string(data), `&`)
	assert.NotContains(t, string(data), `<`)
}

func TestMarshalCanonicalEscapesControlCharacters(t *testing.T) {
	cfg := Config{
		Type:     TypePhoto,
		Operator: And,
		TextFilters: []TextFilter{
			{Field: "caption", Value: "line1\nline2\ttab \"quoted\" back\\slash", Match: MatchContains},
		},
	}

	data, err := MarshalCanonical(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `line1\nline2\ttab \"quoted\" back\\slash`)
}

func TestMarshalCanonicalRejectsNonFiniteBounds(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	_, err := MarshalCanonical(Config{
		Type:         TypeAlumni,
		Operator:     And,
		RangeFilters: []RangeFilter{{Field: "grad_year", Min: &nan}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-finite")

	_, err = MarshalCanonical(Config{
		Type:         TypeAlumni,
		Operator:     And,
		RangeFilters: []RangeFilter{{Field: "grad_year", Max: &inf}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-finite")
}
