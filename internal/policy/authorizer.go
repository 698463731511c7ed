package policy

import (
	"context"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/gate"
	"github.com/diewo77/epic-events/internal/models"
)

// Authorizer is the checkpoint every create/update/delete entry point calls
// before touching the store.
type Authorizer struct {
	gate *gate.Gate[*models.User]
}

// NewAuthorizer returns an authorizer backed by the static role table.
func NewAuthorizer() *Authorizer {
	return &Authorizer{gate: newGate(RoleResolver)}
}

// Authorize returns nil when identity may perform op on target, an AuthError
// when there is no identity and a PermissionDenied outcome otherwise.
func (a *Authorizer) Authorize(ctx context.Context, identity *models.User, op Operation, target any) error {
	if identity == nil {
		return apperr.Auth(op.String(), "login required")
	}
	if err := a.gate.Authorize(ctx, identity, op.Action(), op.Resource(), target); err != nil {
		return apperr.PermissionDenied(op.String(), string(identity.RoleName()))
	}
	return nil
}

// CanEdit is the edit affordance shown next to a listed record. It is a hint
// only; mutations are authorized again.
func (a *Authorizer) CanEdit(ctx context.Context, identity *models.User, op Operation, target any) bool {
	return identity != nil && a.gate.Can(ctx, identity, op.Action(), op.Resource(), target)
}

// Offers reports whether the identity's role grants op at all, ignoring ownership.
func (a *Authorizer) Offers(ctx context.Context, identity *models.User, op Operation) bool {
	return identity != nil && a.gate.CanProfile(ctx, identity, op.Action(), op.Resource())
}

// Precheck rejects identities whose role never grants op, before the target
// is loaded. Ownership grants pass and must be authorized on the record.
func (a *Authorizer) Precheck(ctx context.Context, identity *models.User, op Operation) error {
	if identity == nil {
		return apperr.Auth(op.String(), "login required")
	}
	if !a.Offers(ctx, identity, op) {
		return apperr.PermissionDenied(op.String(), string(identity.RoleName()))
	}
	return nil
}
