package utils

import (
	"sort"
)

// Map builds a new slice by applying mapper to every element of src,
// keeping the order.
func Map[T any, R any](src []T, mapper func(v T) R) []R {
	dest := make([]R, len(src))
	for nth, v := range src {
		dest[nth] = mapper(v)
	}
	return dest
}

// KeysOf flattens a map to the slice of its keys. The order is not
// deterministic.
func KeysOf[T any, K comparable](m map[K]T) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Filter picks the elements of src for which pred returns true,
// keeping the order of src.
func Filter[T any](src []T, pred func(T) bool) []T {
	dest := []T{}
	for _, v := range src {
		if pred(v) {
			dest = append(dest, v)
		}
	}
	return dest
}

// First scans src and returns the first element for which pred returns
// true. The second return value is false when nothing matched.
func First[T any](src []T, pred func(T) bool) (T, bool) {
	for _, v := range src {
		if pred(v) {
			return v, true
		}
	}

	var zero T
	return zero, false
}

// ApplyAll passes value through each modifier in order and returns the
// final result.
func ApplyAll[T any, F ~func(*T) *T](value *T, modifier ...F) *T {
	for _, mod := range modifier {
		value = mod(value)
	}
	return value
}

// Sorted returns a sorted copy of src, ordered by less. The original
// slice is left as it is. The sort is not stable.
func Sorted[T any](src []T, less func(a, b T) bool) []T {
	sorted := make([]T, len(src))
	copy(sorted, src)

	sort.Slice(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// Concat joins slices into a single new slice, in the order given.
func Concat[T any](slices ...[]T) []T {
	total := 0
	for _, s := range slices {
		total += len(s)
	}

	dest := make([]T, 0, total)
	for _, s := range slices {
		dest = append(dest, s...)
	}
	return dest
}
