package pointer

// Ref makes a pointer out of an expression in one step.
func Ref[T any](t T) *T {
	return &t
}
