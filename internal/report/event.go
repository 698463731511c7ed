// Package report delivers operational and business notifications to
// external sinks without ever blocking or failing the caller.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification names.
const (
	FailedLogin     = "FailedLogin"
	UserLoggedIn    = "UserLoggedIn"
	UserRegistered  = "UserRegistered"
	UserUpdated     = "UserUpdated"
	ClientCreated   = "ClientCreated"
	ClientUpdated   = "ClientUpdated"
	ClientDeleted   = "ClientDeleted"
	ContractCreated = "ContractCreated"
	ContractUpdated = "ContractUpdated"
	ContractSigned  = "ContractSigned"
	EventCreated    = "EventCreated"
	EventUpdated    = "EventUpdated"
	StorageFailure  = "StorageError"
	TestError       = "TestError"
)

// Event is a single notification.
type Event struct {
	ID      uuid.UUID      `json:"id"`
	Name    string         `json:"name"`
	Level   Level          `json:"level"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
	At      time.Time      `json:"at"`
}

// New stamps a notification with a fresh ID and the current time.
func New(name string, level Level, message string, fields map[string]any) Event {
	return Event{
		ID:      uuid.New(),
		Name:    name,
		Level:   level,
		Message: message,
		Context: fields,
		At:      time.Now().UTC(),
	}
}

// Reporter accepts notifications. Report must not block and never fails.
type Reporter interface {
	Report(ctx context.Context, e Event)
}

// Sink delivers one event to a backend.
type Sink interface {
	Name() string
	Send(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Report(context.Context, Event) {}
