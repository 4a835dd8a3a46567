package cmp

// MapEq reports whether two maps hold exactly the same key-value pairs.
func MapEq[K comparable, V comparable](a map[K]V, b map[K]V) bool {
	if len(a) != len(b) {
		return false
	}
	for ka, va := range a {
		vb, ok := b[ka]
		if !ok || vb != va {
			return false
		}
	}
	return true
}

// MapEqWith reports whether two maps hold the same keys, with values
// equivalent under comparator.
func MapEqWith[K comparable, V any, U any](a map[K]V, b map[K]U, comparator BiPredicator[V, U]) bool {
	if len(a) != len(b) {
		return false
	}
	for ka, va := range a {
		ub, ok := b[ka]
		if !ok || !comparator(va, ub) {
			return false
		}
	}
	return true
}
