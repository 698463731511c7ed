package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"auth", Auth("login", "bad"), ExitAuth},
		{"denied", PermissionDenied("CreateClient", "Support"), ExitPermissionDenied},
		{"not found", NotFound("UpdateEvent", "event", 9), ExitNotFound},
		{"precondition", PreconditionFailed("CreateEvent", "contract not signed"), ExitPreconditionFailed},
		{"invalid", InvalidInput("CreateClient", "bad", nil), ExitInvalidInput},
		{"storage", Storage("CreateClient", errors.New("disk")), ExitStorage},
		{"plain error", errors.New("boom"), ExitUnexpected},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("x", "client", 1)), ExitNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestIs_MatchesKindSentinel(t *testing.T) {
	err := fmt.Errorf("wrap: %w", PreconditionFailed("CreateEvent", "contract not signed"))

	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, PreconditionFailed("CreateEvent", "contract not signed"))
}

func TestStorage_Unwraps(t *testing.T) {
	cause := errors.New("database is locked")
	err := Storage("UpdateContract", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindStorage, KindOf(err))
}

func TestError_Message(t *testing.T) {
	err := InvalidInput("CreateEvent", "invalid fields", map[string]string{
		"location":  "required",
		"attendees": "too_small",
	})
	assert.Equal(t, "InvalidInput [CreateEvent]: invalid fields (attendees=too_small, location=required)", err.Error())

	denied := PermissionDenied("DeleteClient", "Commercial")
	assert.Equal(t, "PermissionDenied [DeleteClient] role=Commercial: operation not allowed for role", denied.Error())

	assert.Equal(t, "NotFound [UpdateEvent]: event 42 does not exist", NotFound("UpdateEvent", "event", 42).Error())
}

func TestKindOf_Unknown(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("x")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, "Unknown", KindUnknown.String())
}
