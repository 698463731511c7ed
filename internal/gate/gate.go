// Package gate provides a Gate/Policy authorization system.
// A user's profile maps "resource:action" permissions to a Decision; resources
// whose decision is AllowIfOwner are checked again by the ownership Policy
// registered for their type. The package has no dependency on domain models.
//
// The package uses generics to allow any user/subject type:
//   - Gate[uint] for simple user ID based auth
//   - Gate[*User] for full user struct based auth
package gate

import "context"

// Gate is the central authorization checkpoint.
// U is the user/subject type (must be comparable for zero-value check).
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// New creates a gate resolving profiles through resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register adds the ownership policy for a resource type (e.g., "contract").
// Overwrites any existing policy for that type.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize checks:
//  1. User is valid (non-zero) and resolves to a profile
//  2. The profile grants resource:action
//  3. For AllowIfOwner grants, the registered policy accepts the loaded resource
//
// Returns ErrUnauthorized when denied and ErrNoPolicyDefined when an
// ownership grant has no policy to evaluate it.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	switch g.profileDecision(ctx, user, action, resourceType) {
	case Allow:
		return nil
	case AllowIfOwner:
		policy, ok := g.policies[resourceType]
		if !ok {
			return ErrNoPolicyDefined
		}
		// Ownership is never granted without a loaded target.
		if resource == nil || !policy.Can(ctx, user, action, resource) {
			return ErrUnauthorized
		}
		return nil
	default:
		return ErrUnauthorized
	}
}

// Decide is Authorize collapsed to Allow or Deny.
func (g *Gate[U]) Decide(ctx context.Context, user U, action Action, resourceType string, resource any) Decision {
	if g.Authorize(ctx, user, action, resourceType, resource) == nil {
		return Allow
	}
	return Deny
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanProfile checks only the profile grant, without ownership check.
// Useful to decide whether to offer an action before a resource is loaded;
// it is a hint and never replaces Authorize.
func (g *Gate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	return g.profileDecision(ctx, user, action, resourceType) != Deny
}

// Grant returns the raw profile decision for resource:action.
func (g *Gate[U]) Grant(ctx context.Context, user U, action Action, resourceType string) Decision {
	return g.profileDecision(ctx, user, action, resourceType)
}

func (g *Gate[U]) profileDecision(ctx context.Context, user U, action Action, resourceType string) Decision {
	var zero U
	if user == zero {
		return Deny
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return Deny
	}
	return profile.Decision(NewPermission(resourceType, action))
}
