package services

// Optional is a field of a partial update. Set distinguishes "not supplied"
// from "supplied as the zero value".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a supplied value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// applyTo overwrites *dst when the value was supplied.
func (o Optional[T]) applyTo(dst *T) {
	if o.Set {
		*dst = o.Value
	}
}

// applyPtr stores the value in *dst, and an empty string clears it.
func applyPtr(o Optional[string], dst **string) {
	if !o.Set {
		return
	}
	if o.Value == "" {
		*dst = nil
		return
	}
	v := o.Value
	*dst = &v
}
