package utils

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// SafeDeref returns the value behind p, or the zero value for a nil p.
func SafeDeref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
