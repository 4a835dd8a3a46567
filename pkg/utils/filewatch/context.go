// Package filewatch cancels contexts when files change on disk.
package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// UntilModifyContext derives a context which is canceled as soon as any
// of the target files is written, created, removed, or renamed, or the
// watch itself breaks. The cancel cause names what happened.
//
// When the watch cannot be started, the returned context and cancel
// function are both nil.
func UntilModifyContext(ctx context.Context, files ...string) (context.Context, func(), error) {
	cctx, cancel := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return nil, nil, err
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				cancel(fmt.Errorf("%s changed on disk (%s)", event.Name, event.Op))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(err)
			}
		}
	}()

	for _, f := range files {
		if err := w.Add(f); err != nil {
			cancel(err)
			return nil, nil, err
		}
	}
	return cctx, func() { cancel(nil) }, nil
}
