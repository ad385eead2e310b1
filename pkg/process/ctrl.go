package process

import (
	"context"
	"sync"
	"time"
)

// shutdownTimeout bounds how long waitFn blocks for background work
// after the root context is cancelled.
const shutdownTimeout = 5 * time.Second

type ctxKey string

const rootWgKey ctxKey = "__root_wg__"

// GetRootWaitGroup returns the shared WaitGroup carried by a root
// context, or nil for other contexts. Background workers that must be
// flushed before exit add themselves here.
func GetRootWaitGroup(ctx context.Context) *sync.WaitGroup {
	if wg, ok := ctx.Value(rootWgKey).(*sync.WaitGroup); ok {
		return wg
	}

	return nil
}

// GetRootContext builds the process root context. The returned waitFn
// blocks until registered background work finishes or the shutdown
// timeout elapses, whichever comes first.
func GetRootContext() (context.Context, context.CancelFunc, func()) {
	rootWg := &sync.WaitGroup{}
	rootCtx, rootCancel := context.WithCancel(context.Background())
	rootCtx = context.WithValue(rootCtx, rootWgKey, rootWg)

	waitFn := func() {
		exitCtx, exitCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer exitCancel()

		waitDone := make(chan struct{})
		go func() {
			rootWg.Wait()
			close(waitDone)
		}()

		select {
		case <-exitCtx.Done():
		case <-waitDone:
		}
	}

	return rootCtx, rootCancel, waitFn
}
