package policy

import (
	"context"

	"github.com/diewo77/epic-events/internal/gate"
	"github.com/diewo77/epic-events/internal/models"
)

func allow(op Operation) gate.Grant {
	return gate.Grant{Permission: op.Permission(), Decision: gate.Allow}
}

func allowIfOwner(op Operation) gate.Grant {
	return gate.Grant{Permission: op.Permission(), Decision: gate.AllowIfOwner}
}

// profiles is the static permission table. Anything not granted is denied.
var profiles = map[models.RoleName]*gate.StaticProfile{
	models.RoleAdmin: gate.NewStaticProfile(string(models.RoleAdmin),
		gate.Grant{Permission: gate.PermissionSuperAdmin, Decision: gate.Allow},
	),
	models.RoleCommercial: gate.NewStaticProfile(string(models.RoleCommercial),
		allow(CreateClient), allow(UpdateClient), allow(ListClients),
		allow(CreateContract), allowIfOwner(UpdateContract), allow(ListContracts), allow(FilterContracts),
		allow(ListEvents), allow(FilterEvents),
	),
	models.RoleSupport: gate.NewStaticProfile(string(models.RoleSupport),
		allow(ListClients), allow(ListContracts),
		allow(CreateEvent), allowIfOwner(UpdateEvent), allow(ListEvents), allow(FilterEvents),
	),
	// Gestion updates any contract; the ownership rule applies to Commercial only.
	models.RoleGestion: gate.NewStaticProfile(string(models.RoleGestion),
		allow(ListClients),
		allow(UpdateContract), allow(ListContracts),
		allow(CreateEvent), allow(ListEvents), allow(FilterEvents),
	),
}

// ProfileFor returns the permission table of role, or nil for unknown roles.
func ProfileFor(role models.RoleName) gate.Profile {
	if p, ok := profiles[role]; ok {
		return p
	}
	return nil
}

// Grant returns the raw table entry for (role, op).
func Grant(role models.RoleName, op Operation) gate.Decision {
	p := ProfileFor(role)
	if p == nil {
		return gate.Deny
	}
	return p.Decision(op.Permission())
}

// RoleResolver resolves a user to the profile of their loaded role.
var RoleResolver = gate.ResolverFunc[*models.User](func(_ context.Context, u *models.User) (gate.Profile, error) {
	return ProfileFor(u.RoleName()), nil
})

func newGate(resolver gate.ProfileResolver[*models.User]) *gate.Gate[*models.User] {
	g := gate.New[*models.User](resolver)
	g.Register(ResourceContract, OwnershipPolicy{})
	g.Register(ResourceEvent, SupportAssignmentPolicy{})
	return g
}

// Decide evaluates the table for role and op. AllowIfOwner entries are
// resolved against the already-loaded target, never against caller input.
func Decide(role models.RoleName, op Operation, target any, identity *models.User) gate.Decision {
	if identity == nil {
		return gate.Deny
	}
	g := newGate(gate.ResolverFunc[*models.User](func(context.Context, *models.User) (gate.Profile, error) {
		return ProfileFor(role), nil
	}))
	return g.Decide(context.Background(), identity, op.Action(), op.Resource(), target)
}
