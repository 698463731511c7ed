package gate

import "context"

// Policy holds the ownership rule for a resource type.
// U is the user/subject type (e.g., uint for userID, *User for full user struct).
type Policy[U any] interface {
	// Can returns true if user may perform action on the loaded resource.
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

// Can calls f.
func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}
