package process

import (
	"fmt"
	"time"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/schema"
)

// Validation error codes (E100-E199)
const (
	ErrUnknownContentType = "E100" // type is not a registered content type
	ErrInvalidCombinator  = "E101" // operator is not AND/OR
	ErrUnknownField       = "E102" // field is not in the type's allow-list
	ErrFieldKindMismatch  = "E103" // filter category does not match field kind
	ErrInvalidMatchType   = "E104" // matchType is not one of the four
	ErrInvertedRange      = "E105" // min > max
	ErrUnparsableDate     = "E106" // date bound does not parse as 2006-01-02
	ErrInvertedDateRange  = "E107" // start > end
)

// dateLayout is the wire format for date bounds. Stored date columns use
// the same format, so lexicographic comparison orders correctly.
const dateLayout = "2006-01-02"

// ValidationError describes one problem with a filter config.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationResult collects every problem found in a config. Validation
// never fails fast: the builder UI shows per-field messages, so it needs
// all of them at once.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Validate checks a flat config against the registry. It is pure and
// returns errors as data, never as error values.
//
// Field names are the security boundary: they are spliced into query text
// as column names (values are always bound), so a field that does not
// resolve through the registry allow-list is rejected here and must never
// reach the compiler. The compiler assumes validated input.
//
// Filters that contribute no predicate (a text value that trims to empty,
// a range or date with both bounds open) are not errors; they are dropped
// silently by evaluation and compilation alike. Their field and shape are
// still checked, so a builder wiring a bogus field name is caught even
// before the user types a value.
func Validate(reg *schema.Registry, cfg filter.Config) ValidationResult {
	var errs []ValidationError

	spec, ok := reg.Type(string(cfg.Type))
	if !ok {
		errs = append(errs, ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("unknown content type %q", cfg.Type),
			Code:    ErrUnknownContentType,
		})
	}

	if !filter.ValidCombinator(cfg.Operator) {
		errs = append(errs, ValidationError{
			Field:   "operator",
			Message: fmt.Sprintf("operator must be AND or OR, got %q", cfg.Operator),
			Code:    ErrInvalidCombinator,
		})
	}

	for i, f := range cfg.TextFilters {
		path := fmt.Sprintf("textFilters[%d]", i)
		checkField(&errs, spec, path, f.Field, schema.KindText)
		if !filter.ValidMatchType(f.Match) {
			errs = append(errs, ValidationError{
				Field:   path + ".matchType",
				Message: fmt.Sprintf("matchType must be contains, equals, startsWith, or endsWith, got %q", f.Match),
				Code:    ErrInvalidMatchType,
			})
		}
	}

	for i, f := range cfg.RangeFilters {
		path := fmt.Sprintf("rangeFilters[%d]", i)
		checkField(&errs, spec, path, f.Field, schema.KindNumber)
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("min %v exceeds max %v", *f.Min, *f.Max),
				Code:    ErrInvertedRange,
			})
		}
	}

	for i, f := range cfg.DateFilters {
		path := fmt.Sprintf("dateFilters[%d]", i)
		checkField(&errs, spec, path, f.Field, schema.KindDate)
		startOK := checkDate(&errs, path+".start", f.Start)
		endOK := checkDate(&errs, path+".end", f.End)
		if startOK && endOK && f.Start != "" && f.End != "" && f.Start > f.End {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("start %s is after end %s", f.Start, f.End),
				Code:    ErrInvertedDateRange,
			})
		}
	}

	for i, f := range cfg.BooleanFilters {
		path := fmt.Sprintf("booleanFilters[%d]", i)
		checkField(&errs, spec, path, f.Field, schema.KindBool)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// checkField verifies that a field name resolves through the allow-list
// and that its registry kind matches the filter category targeting it.
// With an unknown content type the per-field checks are skipped; the
// E100 already reported covers them.
func checkField(errs *[]ValidationError, spec *schema.TypeSpec, path, name string, want schema.Kind) {
	if spec == nil {
		return
	}
	field, ok := spec.Field(name)
	if !ok {
		*errs = append(*errs, ValidationError{
			Field:   path + ".field",
			Message: fmt.Sprintf("field %q is not searchable on content type %q", name, spec.Name),
			Code:    ErrUnknownField,
		})
		return
	}
	if field.Kind != want {
		*errs = append(*errs, ValidationError{
			Field:   path + ".field",
			Message: fmt.Sprintf("field %q has kind %s, not %s", name, field.Kind, want),
			Code:    ErrFieldKindMismatch,
		})
	}
}

// checkDate verifies a date bound parses as 2006-01-02. Empty bounds are
// open and always valid.
func checkDate(errs *[]ValidationError, path, bound string) bool {
	if bound == "" {
		return true
	}
	if _, err := time.Parse(dateLayout, bound); err != nil {
		*errs = append(*errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("date %q is not in 2006-01-02 form", bound),
			Code:    ErrUnparsableDate,
		})
		return false
	}
	return true
}
