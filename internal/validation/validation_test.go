package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/epic-events/internal/apperr"
)

type sample struct {
	Name      string `json:"full_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Attendees int    `json:"attendees" validate:"gt=0"`
	Ignored   string `json:"-"`
}

func TestStruct(t *testing.T) {
	v := Struct(sample{Email: "not-an-email"})
	assert.Equal(t, Violations{
		"full_name": "required",
		"email":     "invalid_email",
		"attendees": "too_small",
	}, v)

	assert.True(t, Struct(sample{Name: "Ada", Email: "ada@example.com", Attendees: 1}).Empty())
}

func TestBasicValidators(t *testing.T) {
	v := Violations{}
	Required("name", "   ", v)
	PositiveInt("attendees", 0, v)
	NonNegativeFloat("amount_due", -1, v)
	Required("amount_due", "", v)
	MaxBytes("password", strings.Repeat("é", 37), MaxPasswordBytes, v)
	MaxBytes("email", strings.Repeat("é", 36), MaxPasswordBytes, v)

	assert.Equal(t, "required", v["name"])
	assert.Equal(t, "must_be_positive", v["attendees"])
	assert.Equal(t, "too_large", v["password"])
	assert.NotContains(t, v, "email")
	// first violation wins
	assert.Equal(t, "must_not_be_negative", v["amount_due"])
}

func TestViolations_Err(t *testing.T) {
	assert.NoError(t, Violations{}.Err("op"))

	err := Violations{"email": "required"}.Err("CreateClient")
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "required", appErr.Fields["email"])
}
