// Package commandline stubs flarc's command line for task tests.
package commandline

import (
	"io"

	"github.com/youta-t/flarc"
)

// MockCommandline is a flarc.Commandline whose every part is a plain
// field. Tests fill in just what the task under test touches.
type MockCommandline[T any] struct {
	Fullname_ string

	Stdin_  io.Reader
	Stdout_ io.Writer
	Stderr_ io.Writer

	Flags_ T
	Args_  map[string][]string
}

var _ flarc.Commandline[struct{}] = MockCommandline[struct{}]{}

func (m MockCommandline[T]) Fullname() string {
	return m.Fullname_
}

func (m MockCommandline[T]) Stdin() io.Reader {
	return m.Stdin_
}

func (m MockCommandline[T]) Stdout() io.Writer {
	return m.Stdout_
}

func (m MockCommandline[T]) Stderr() io.Writer {
	return m.Stderr_
}

func (m MockCommandline[T]) Flags() T {
	return m.Flags_
}

func (m MockCommandline[T]) Args() map[string][]string {
	return m.Args_
}
