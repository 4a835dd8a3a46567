package cmp

// BiPredicator tells whether a (from the left operand) and b (from the
// right operand) should be treated as equivalent.
type BiPredicator[V any, U any] func(a V, b U) bool

// EqEq is == as a BiPredicator.
func EqEq[T comparable](a, b T) bool {
	return a == b
}
