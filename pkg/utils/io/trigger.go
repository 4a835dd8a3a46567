package io

import (
	"io"
	"sync"
)

// TriggerReader is a reader which fires callbacks when the stream it
// wraps runs out.
type TriggerReader interface {
	io.Reader

	// OnEnd registers a callback called once the whole stream has been
	// read. Registering after the end calls the callback at once.
	OnEnd(func())
}

type triggerReader struct {
	src       io.Reader
	callbacks []func()
	done      bool
	mu        sync.Mutex
}

func NewTriggerReader(src io.Reader) TriggerReader {
	return &triggerReader{src: src}
}

func (tr *triggerReader) Read(p []byte) (int, error) {
	n, err := tr.src.Read(p)
	if err != io.EOF {
		return n, err
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if !tr.done {
		tr.done = true
		for _, callback := range tr.callbacks {
			callback()
		}
		tr.callbacks = nil
	}
	return n, err
}

func (tr *triggerReader) OnEnd(callback func()) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.done {
		callback()
		return
	}
	tr.callbacks = append(tr.callbacks, callback)
}
