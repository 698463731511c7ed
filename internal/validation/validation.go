// Package validation collects field violations for command inputs.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator"

	"github.com/diewo77/epic-events/internal/apperr"
)

// Violations maps a field name to a short violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records the first violation of field.
func (v Violations) Add(field, code string) {
	if _, exists := v[field]; !exists {
		v[field] = code
	}
}

// Err returns an InvalidInput outcome for op, or nil when v is empty.
func (v Violations) Err(op string) error {
	if v.Empty() {
		return nil
	}
	return apperr.InvalidInput(op, "invalid fields", map[string]string(v))
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v.Add(field, "must_be_positive")
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v.Add(field, "must_not_be_negative")
	}
}

// MaxPasswordBytes is the longest password bcrypt will digest.
const MaxPasswordBytes = 72

// MaxBytes bounds the encoded length of value, not its rune count.
func MaxBytes(field, value string, limit int, v Violations) {
	if len(value) > limit {
		v.Add(field, "too_large")
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct runs the `validate` struct tags of s and returns the violations,
// keyed by json field name.
func Struct(s any) Violations {
	v := Violations{}
	err := validate.Struct(s)
	if err == nil {
		return v
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		v.Add("_", "invalid")
		return v
	}
	for _, fe := range errs {
		v.Add(fe.Field(), code(fe.ActualTag()))
	}
	return v
}

func code(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "email":
		return "invalid_email"
	case "gt", "min":
		return "too_small"
	case "gte":
		return "must_not_be_negative"
	case "max", "lte", "lt":
		return "too_large"
	default:
		return "invalid"
	}
}
