package policy

import (
	"context"

	"github.com/diewo77/epic-events/internal/gate"
	"github.com/diewo77/epic-events/internal/models"
)

// Ownable is implemented by records carrying a sales-contact owner.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy accepts a user who is the sales contact of the resource.
type OwnershipPolicy struct{}

// Can denies resources that do not implement Ownable.
func (OwnershipPolicy) Can(_ context.Context, user *models.User, _ gate.Action, resource any) bool {
	if user == nil {
		return false
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == user.ID
}

// SupportAssignmentPolicy accepts the support user whose full name is the
// event's current support contact.
type SupportAssignmentPolicy struct{}

// Can matches on the event as loaded from the store.
func (SupportAssignmentPolicy) Can(_ context.Context, user *models.User, _ gate.Action, resource any) bool {
	if user == nil {
		return false
	}
	event, ok := resource.(*models.Event)
	if !ok || event == nil {
		return false
	}
	return event.SupportedBy(user.FullName)
}
