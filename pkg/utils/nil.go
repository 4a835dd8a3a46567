package utils

// ZeroUnless dereferences p, or returns the zero value of T when p is
// nil. It spares optional-field decoders from writing the nil check at
// every field.
func ZeroUnless[T any](p *T) T {
	if p != nil {
		return *p
	}
	return *new(T)
}
