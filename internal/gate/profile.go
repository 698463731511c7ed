package gate

import (
	"context"
	"sort"
)

// Profile is a role together with its permission table.
type Profile interface {
	Name() string
	// Decision returns the outcome granted for the requested permission.
	Decision(requested Permission) Decision
	Permissions() []Permission
}

// Grant binds a permission to a decision.
type Grant struct {
	Permission Permission
	Decision   Decision
}

// ProfileResolver resolves a user to their profile.
// U is the user type (e.g., uint for userID, *User for full user struct).
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Profile, error)
}

// StaticProfile is an in-memory permission table.
type StaticProfile struct {
	name   string
	grants map[Permission]Decision
}

// NewStaticProfile creates a profile with the given grants. Permissions not
// granted are denied.
func NewStaticProfile(name string, grants ...Grant) *StaticProfile {
	p := &StaticProfile{
		name:   name,
		grants: make(map[Permission]Decision, len(grants)),
	}
	for _, g := range grants {
		p.grants[g.Permission] = g.Decision
	}
	return p
}

// Name returns the profile's display name.
func (p *StaticProfile) Name() string { return p.name }

// Permissions returns all granted permissions, sorted.
func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.grants))
	for perm := range p.grants {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// Decision returns the grant of the most specific matching permission.
// An exact grant overrides "resource:*", which overrides "*:*".
func (p *StaticProfile) Decision(requested Permission) Decision {
	best, bestRank := Deny, -1
	for perm, d := range p.grants {
		if !perm.Matches(requested) {
			continue
		}
		if rank := perm.specificity(); rank > bestRank {
			best, bestRank = d, rank
		}
	}
	return best
}

// ResolverFunc adapts a function to the ProfileResolver interface.
type ResolverFunc[U any] func(ctx context.Context, user U) (Profile, error)

// Resolve calls f.
func (f ResolverFunc[U]) Resolve(ctx context.Context, user U) (Profile, error) {
	return f(ctx, user)
}
