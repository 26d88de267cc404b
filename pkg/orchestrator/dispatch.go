package orchestrator

import (
	"context"

	"github.com/guardrails/orchestrator/pkg/orcherrors"
)

func fromPanic(r interface{}) error {
	return orcherrors.FromPanic(r)
}

// Orchestrator wraps a Context with the dispatch pattern every task
// handler uses: unary tasks run on a goroutine and the caller awaits a
// single result; streaming tasks run on a goroutine and return a
// channel immediately. Cancellation is structural: the caller dropping
// the returned channel (for streaming) or abandoning the call (for
// unary, via ctx) is sufficient — handlers observe it through ctx and
// through the channels they write to.
type Orchestrator struct {
	Ctx *Context
}

// New builds an Orchestrator over ctx.
func New(ctx *Context) *Orchestrator {
	return &Orchestrator{Ctx: ctx}
}

// DispatchUnary runs fn on a goroutine and returns its result, or an
// error derived from ctx cancellation/panic if fn never completes
// normally. This mirrors spec.md §9's "exactly one Context ... pass it
// by shared reference" together with §4.7's panic/cancellation
// surfacing.
func DispatchUnary[R any](ctx context.Context, fn func() (R, error)) (R, error) {
	type result struct {
		value R
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero R
				resultCh <- result{value: zero, err: fromPanic(r)}
			}
		}()
		value, err := fn()
		resultCh <- result{value: value, err: err}
	}()

	select {
	case r := <-resultCh:
		return r.value, r.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// DispatchStream is the streaming counterpart to DispatchUnary: fn
// spawns its own goroutine and returns its channel immediately, per
// spec.md §4.2 ("the handler returns a response channel immediately and
// runs asynchronously"). fn is responsible for writing to the channel
// it returns and closing it when done or when ctx is cancelled;
// DispatchStream itself does no buffering beyond what fn creates.
func DispatchStream[R any](fn func() <-chan R) <-chan R {
	return fn()
}
