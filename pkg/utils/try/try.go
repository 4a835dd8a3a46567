// Package try folds (value, error) pairs into single expressions.
package try

// Fataler takes a fatal report. *testing.T and log.Logger are Fatalers.
type Fataler interface {
	Fatal(...any)
}

// Either holds the outcome of a call returning (T, error).
type Either[T any] interface {

	// Get unwraps the pair as it was.
	Get() (T, error)

	// OrFatal returns the value, or hands the error to ftl.Fatal.
	//
	// When ftl has a Helper method, as *testing.T does, it is called
	// first so the failure points at the caller.
	OrFatal(ftl Fataler) T
}

// To wraps a (value, error) pair into an Either.
func To[T any](value T, err error) Either[T] {
	if err == nil {
		return succeeded[T]{value}
	}
	return failed[T]{err}
}

type succeeded[T any] struct {
	value T
}

type failed[T any] struct {
	err error
}

func (s succeeded[T]) Get() (T, error) {
	return s.value, nil
}

func (f failed[T]) Get() (T, error) {
	return *new(T), f.err
}

func (s succeeded[T]) OrFatal(Fataler) T {
	return s.value
}

func (f failed[T]) OrFatal(ftl Fataler) T {
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(f.err)

	return *new(T)
}
