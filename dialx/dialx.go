// Package dialx runs connection attempts against a fixed deadline.
//
// Overview:
//   - Responsibility: Bound the time spent reaching an external dependency
//   - Key Types: Attempt, Outcome
//   - Concurrency Model: The operation runs in its own goroutine under a cancellable context
//   - Error Semantics: Timeouts and failures are reported distinctly via errors.ConnectError
//
// Usage:
//
//	att := dialx.Run(ctx, "document store", 30*time.Second, func(ctx context.Context) (*mongo.Client, error) {
//	    return dial(ctx)
//	})
//	client, err := att.Result()
package dialx

import (
	"context"
	"time"

	"github.com/red2n/opentele/core/errors"
)

// DefaultDeadline is the connection deadline used when none is configured.
const DefaultDeadline = 30 * time.Second

// Outcome is the terminal state of an Attempt.
type Outcome int

const (
	Succeeded Outcome = iota
	TimedOut
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case TimedOut:
		return "timed out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Attempt is one bounded effort to reach an external service.
type Attempt[T any] struct {
	Target   string
	Deadline time.Duration
	Outcome  Outcome
	Handle   T     // valid only when Outcome is Succeeded
	Err      error // cause when Outcome is Failed
	Elapsed  time.Duration
}

// Result converts the attempt into a handle or an errors.ConnectError.
func (a Attempt[T]) Result() (T, error) {
	switch a.Outcome {
	case Succeeded:
		return a.Handle, nil
	case TimedOut:
		var zero T
		return zero, &errors.ConnectError{Target: a.Target, Reason: errors.ReasonTimeout}
	default:
		var zero T
		return zero, &errors.ConnectError{Target: a.Target, Reason: errors.ReasonUnderlying, Err: a.Err}
	}
}

// Run executes op with a deadline. See RunWithRelease.
func Run[T any](ctx context.Context, target string, deadline time.Duration, op func(context.Context) (T, error)) Attempt[T] {
	return RunWithRelease(ctx, target, deadline, op, nil)
}

// RunWithRelease executes op under a countdown of deadline.
//
// If op returns before the countdown fires its own result is reported. If the
// countdown fires first, op's context is cancelled and the attempt is TimedOut;
// a handle op still produces afterwards is passed to release so it is not leaked.
// Cancellation of ctx itself yields Failed with the context error.
func RunWithRelease[T any](ctx context.Context, target string, deadline time.Duration, op func(context.Context) (T, error), release func(T)) Attempt[T] {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}

	att := Attempt[T]{Target: target, Deadline: deadline}
	start := time.Now()

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	expired := make(chan struct{})
	timer := time.AfterFunc(deadline, func() {
		close(expired)
		cancel()
	})

	type result struct {
		handle T
		err    error
	}
	done := make(chan result, 1)
	go func() {
		h, err := op(opCtx)
		done <- result{handle: h, err: err}
	}()

	select {
	case r := <-done:
		// The countdown may have fired while op was returning; Stop settles it.
		if !timer.Stop() {
			<-expired
			att.Outcome = TimedOut
			if r.err == nil && release != nil {
				release(r.handle)
			}
			break
		}
		if r.err != nil {
			att.Outcome = Failed
			att.Err = r.err
			break
		}
		att.Outcome = Succeeded
		att.Handle = r.handle

	case <-expired:
		att.Outcome = TimedOut
		go func() {
			r := <-done
			if r.err == nil && release != nil {
				release(r.handle)
			}
		}()

	case <-ctx.Done():
		timer.Stop()
		att.Outcome = Failed
		att.Err = ctx.Err()
		go func() {
			r := <-done
			if r.err == nil && release != nil {
				release(r.handle)
			}
		}()
	}

	att.Elapsed = time.Since(start)
	return att
}
