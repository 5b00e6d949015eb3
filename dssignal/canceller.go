// Package dssignal implements DirSchema's cooperative cancellation: a
// Canceller wraps a context.Context and is polled once per path in
// evaluate.Validate's top-level loop and before each sub-rule of an
// allOf/anyOf/oneOf list, so a long validation run can be interrupted without
// leaving adapter handles open mid-rule.
//
// Grounded on the teacher's signals package, thinned heavily: that package
// answers "how does a long-running HTTP server shut down on SIGTERM",
// which has no analogue in a library with no server loop of its own — the
// os.Signal plumbing, the HTTP shutdown-trigger endpoint, and the signal
// injector test harness are all dropped. What's kept is the shape of the
// problem: cancellation is cooperative, checked at well-defined points,
// and reported through a named sentinel error rather than a panic.
package dssignal

import (
	"context"
	"errors"
)

// ErrCancelled is returned by Canceller.Check (and propagated up through
// evaluate.Validate) once the wrapped context is done.
var ErrCancelled = errors.New("dirschema: validation run cancelled")

// Canceller polls a context.Context at the granularity the evaluator
// chooses (per path, per combinator sub-rule) rather than on every function
// call, keeping the check cheap enough to call liberally.
type Canceller struct {
	ctx context.Context
}

// New wraps ctx in a Canceller.
func New(ctx context.Context) Canceller {
	return Canceller{ctx: ctx}
}

// Check returns ErrCancelled if the wrapped context is done, nil
// otherwise.
func (c Canceller) Check() error {
	select {
	case <-c.ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}

// Done reports whether the wrapped context has already been cancelled,
// without allocating an error — useful in a tight loop guard like
// `for _, p := range paths { if c.Done() { break } ... }`.
func (c Canceller) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}
