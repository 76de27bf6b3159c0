package runtimex

import (
	"context"
	"time"

	coreerrors "github.com/red2n/opentele/core/errors"
	"github.com/red2n/opentele/core/log"
	"github.com/red2n/opentele/runtimex/internal"
)

// DefaultShutdownTimeout bounds Stop when Options.ShutdownTimeout is zero.
const DefaultShutdownTimeout = 15 * time.Second

// State is a lifecycle phase of the Runtime.
type State = internal.State

// Lifecycle states. Failed is terminal; Stopped follows ShuttingDown.
const (
	StateIdle             = internal.StateIdle
	StateConnectingStore  = internal.StateConnectingStore
	StateConnectingBroker = internal.StateConnectingBroker
	StateServing          = internal.StateServing
	StateShuttingDown     = internal.StateShuttingDown
	StateStopped          = internal.StateStopped
	StateFailed           = internal.StateFailed
)

// Dependency is an external service connected before the listeners open.
// storex.DocumentStore and brokerx.Connector satisfy it.
type Dependency = internal.Dependency

// Listener is a network surface. httpx.Server satisfies it.
type Listener = internal.Listener

// Task is a named background job started after the listeners and
// cancelled during Stop.
type Task = internal.Task

// Options holds configuration for the runtime.
type Options struct {
	Logger          log.Logger    // Logger for lifecycle events
	Store           Dependency    // Connected first, released last
	Broker          Dependency    // Connected second, released first
	Listener        Listener      // Main listener, opened once both are up
	Extra           []Listener    // Auxiliary listeners such as the ops endpoint
	Tasks           []Task        // Background jobs such as the idle monitor
	ShutdownTimeout time.Duration // Teardown budget used by Run
}

// Runtime orchestrates ordered bring-up and coordinated teardown.
type Runtime struct {
	impl *internal.Runtime
}

// New validates opts and creates an idle Runtime.
func New(opts Options) (*Runtime, error) {
	switch {
	case opts.Logger == nil:
		return nil, coreerrors.New(coreerrors.CodeInvalidArgument, "logger is required")
	case opts.Store == nil:
		return nil, coreerrors.New(coreerrors.CodeInvalidArgument, "store is required")
	case opts.Broker == nil:
		return nil, coreerrors.New(coreerrors.CodeInvalidArgument, "broker is required")
	case opts.Listener == nil:
		return nil, coreerrors.New(coreerrors.CodeInvalidArgument, "listener is required")
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	return &Runtime{impl: internal.NewRuntime(internal.Config{
		Logger:          opts.Logger,
		Store:           opts.Store,
		Broker:          opts.Broker,
		Listener:        opts.Listener,
		Extra:           opts.Extra,
		Tasks:           opts.Tasks,
		ShutdownTimeout: opts.ShutdownTimeout,
	})}, nil
}

// Start connects the store, then the broker, then opens the listeners and
// launches the background tasks. A broker failure releases the store; a
// listener failure releases the broker and the store. On any failure the
// runtime is left in StateFailed and the first error is returned.
func (r *Runtime) Start(ctx context.Context) error {
	return r.impl.Start(ctx)
}

// Stop disconnects the broker, closes the listeners, stops the background
// tasks and disconnects the store, in that order. Every step is attempted
// even when an earlier one fails; the failures are joined. Stop runs once.
// It must not be called while Start is still in progress.
func (r *Runtime) Stop(ctx context.Context) error {
	return r.impl.Stop(ctx)
}

// State returns the current lifecycle state. Safe for concurrent use.
func (r *Runtime) State() State {
	return r.impl.State()
}

// Run starts rt, blocks until ctx is done and stops rt within its shutdown
// timeout. It returns the process exit code: 0 on a clean shutdown, 1 on any
// startup or shutdown failure.
func Run(ctx context.Context, rt *Runtime) int {
	if err := rt.Start(ctx); err != nil {
		return 1
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rt.impl.ShutdownTimeout())
	defer cancel()
	if err := rt.Stop(stopCtx); err != nil {
		return 1
	}
	return 0
}
