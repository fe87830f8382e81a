package captainhook

import "context"

// Awaitable is a deferred handler result. A handler may return an
// Awaitable instead of a plain value; the dispatcher resolves it before
// running result filters, so synchronous and asynchronous handlers are
// indistinguishable to callers.
type Awaitable interface {
	Await(ctx context.Context) (any, error)
}

// futureResult carries a finished computation across the channel.
type futureResult struct {
	value any
	err   error
}

type future struct {
	done chan futureResult
}

// Await implements Awaitable. It returns the computed value, or the
// context error if ctx finishes first.
func (f *future) Await(ctx context.Context) (any, error) {
	select {
	case res := <-f.done:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Go runs fn in its own goroutine and returns an Awaitable for its
// result. fn receives the ctx passed here, not the one later given to
// Await; cancel either to abort the wait.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) Awaitable {
	f := &future{done: make(chan futureResult, 1)}
	go func() {
		value, err := fn(ctx)
		f.done <- futureResult{value: value, err: err}
	}()
	return f
}
