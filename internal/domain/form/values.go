package form

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/workforce/backend/internal/domain/shared"
)

// Accepted layouts for temporal field values
var (
	dateLayouts     = []string{"2006-01-02"}
	timeLayouts     = []string{"15:04", "15:04:05"}
	dateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04:05"}
)

// ValidateData checks submission data against the template: every required
// field present and non-empty, the signature when the template asks for one,
// and every non-empty value well-formed for its field type.
func (t *FormTemplate) ValidateData(data SubmissionData) []shared.FieldError {
	errs := make([]shared.FieldError, 0)

	for _, f := range t.Fields() {
		value, ok := data[f.Key()]
		if !ok || isEmptyValue(f.Type, value) {
			if f.Required {
				errs = append(errs, shared.FieldError{
					Field:   f.Key(),
					Rule:    RuleRequired,
					Message: f.Label + " is required",
				})
			}
			continue
		}
		if fe := validateValue(f, value); fe != nil {
			errs = append(errs, *fe)
		}
	}

	if t.IsSignatureRequired && !data.HasSignature() {
		errs = append(errs, shared.FieldError{
			Field:   SignatureKey,
			Rule:    RuleRequired,
			Message: "Signature is required",
		})
	}
	return errs
}

// isEmptyValue treats nil, blank strings and empty lists or objects as missing.
// An unchecked checkbox counts as empty so required checkboxes must be ticked.
func isEmptyValue(fieldType FieldType, v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	case bool:
		return fieldType == FieldTypeCheckbox && !val
	}
	return false
}

func isTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return strings.TrimSpace(val) != ""
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		return err == nil && !d.IsZero()
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	}
	return true
}

func validateValue(f *FormField, v any) *shared.FieldError {
	fail := func(rule, msg string) *shared.FieldError {
		return &shared.FieldError{Field: f.Key(), Rule: rule, Message: f.Label + " " + msg}
	}

	switch f.Type {
	case FieldTypeText, FieldTypeTextarea:
		s, ok := v.(string)
		if !ok {
			return fail(RuleType, "must be text")
		}
		n := utf8.RuneCountInString(s)
		if f.MinLength != nil && n < *f.MinLength {
			return fail(RuleLength, fmt.Sprintf("must be at least %d characters", *f.MinLength))
		}
		if f.MaxLength != nil && n > *f.MaxLength {
			return fail(RuleLength, fmt.Sprintf("cannot exceed %d characters", *f.MaxLength))
		}
	case FieldTypeNumber:
		if !isNumber(v) {
			return fail(RuleType, "must be a number")
		}
	case FieldTypeDate:
		if !parsesAs(v, dateLayouts) {
			return fail(RuleFormat, "must be a date (YYYY-MM-DD)")
		}
	case FieldTypeTime:
		if !parsesAs(v, timeLayouts) {
			return fail(RuleFormat, "must be a time (HH:MM)")
		}
	case FieldTypeDateTime:
		if !parsesAs(v, dateTimeLayouts) {
			return fail(RuleFormat, "must be a date and time")
		}
	case FieldTypeCheckbox:
		if _, ok := v.(bool); !ok {
			return fail(RuleType, "must be true or false")
		}
	case FieldTypeDropdown, FieldTypeRadio:
		s, ok := v.(string)
		if !ok {
			return fail(RuleType, "must be a single option")
		}
		if !f.HasOption(s) {
			return fail(RuleOption, "has no option "+s)
		}
	case FieldTypeMultiselect:
		values, ok := stringList(v)
		if !ok {
			return fail(RuleType, "must be a list of options")
		}
		if !f.Multiple && len(values) > 1 {
			return fail(RuleOption, "accepts a single option")
		}
		for _, s := range values {
			if !f.HasOption(s) {
				return fail(RuleOption, "has no option "+s)
			}
		}
	default:
		return fail(RuleType, "has unknown type "+f.Type.String())
	}
	return nil
}

func isNumber(v any) bool {
	switch val := v.(type) {
	case json.Number:
		_, err := decimal.NewFromString(val.String())
		return err == nil
	case string:
		_, err := decimal.NewFromString(strings.TrimSpace(val))
		return err == nil
	case float64:
		return !math.IsNaN(val) && !math.IsInf(val, 0)
	case float32, int, int32, int64:
		return true
	}
	return false
}

func parsesAs(v any, layouts []string) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func stringList(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
