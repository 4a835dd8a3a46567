package cmp

// SliceEq reports whether two slices hold the same elements in the
// same order.
func SliceEq[T comparable](a []T, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for nth, va := range a {
		if va != b[nth] {
			return false
		}
	}
	return true
}

// SliceEqWith reports whether two slices are equivalent elementwise
// under pred.
func SliceEqWith[T any, U any](a []T, b []U, pred func(a T, b U) bool) bool {
	if len(a) != len(b) {
		return false
	}

	for nth := range a {
		if !pred(a[nth], b[nth]) {
			return false
		}
	}

	return true
}

// SliceContentEq reports whether two slices hold the same elements
// regardless of order. Duplicates count: each element of a must pair
// up with its own element of b.
func SliceContentEq[T comparable](a, b []T) bool {
	return SliceContentEqWith(a, b, EqEq[T])
}

// SliceContentEqWith is SliceContentEq under the equivalence equiv.
func SliceContentEqWith[S, T any](a []S, b []T, equiv BiPredicator[S, T]) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}

	rest := make(map[int]*T, len(b))
	for i := range b {
		rest[i] = &b[i]
	}

NEXT:
	for _, va := range a {
		for k, vb := range rest {
			if equiv(va, *vb) {
				delete(rest, k)
				continue NEXT
			}
		}
		return false
	}

	return len(rest) == 0
}
