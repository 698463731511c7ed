package gate

// Decision is the outcome stored in a profile for one permission.
// AllowIfOwner needs the resource policy to accept the loaded target.
type Decision int

const (
	Deny Decision = iota
	Allow
	AllowIfOwner
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "Allow"
	case AllowIfOwner:
		return "AllowIfOwner"
	default:
		return "Deny"
	}
}
