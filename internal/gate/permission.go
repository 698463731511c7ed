package gate

import "strings"

// Permission represents an action on a resource type.
// Format: "resource:action" (e.g., "client:create", "event:update")
type Permission string

// NewPermission creates a permission from resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits a permission into resource type and action.
func (p Permission) Parse() (resourceType string, action Action) {
	parts := strings.SplitN(string(p), ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], Action(parts[1])
}

// Wildcards for super permissions
const (
	WildcardAll          = "*"
	PermissionSuperAdmin Permission = "*:*"
)

// Matches checks if this permission covers a requested permission.
// "*:*" matches all, "client:*" matches all client actions.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, _ := requested.Parse()
	return res == reqRes && string(act) == WildcardAll
}

// specificity ranks matches so that an exact grant wins over a wildcard.
func (p Permission) specificity() int {
	switch {
	case p == PermissionSuperAdmin:
		return 0
	case strings.HasSuffix(string(p), ":"+WildcardAll):
		return 1
	default:
		return 2
	}
}
