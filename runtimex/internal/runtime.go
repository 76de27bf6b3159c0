// Package internal contains the runtime implementation.
package internal

import (
	"context"
	"errors"
	"sync"
	"time"

	coreerrors "github.com/red2n/opentele/core/errors"
	"github.com/red2n/opentele/core/log"
)

// Dependency is an external service connected before serving.
type Dependency interface {
	Name() string
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// Listener is a network surface opened once dependencies are up.
type Listener interface {
	Name() string
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

// Task is a background job that runs until its context is cancelled.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Config holds the collaborators of a Runtime.
type Config struct {
	Logger          log.Logger
	Store           Dependency
	Broker          Dependency
	Listener        Listener
	Extra           []Listener
	Tasks           []Task
	ShutdownTimeout time.Duration
}

// Runtime brings dependencies up in order and tears them down in reverse.
type Runtime struct {
	cfg    Config
	logger log.Logger

	mu    sync.RWMutex
	state State

	extras     []Listener
	taskCancel context.CancelFunc
	tasks      sync.WaitGroup

	stopOnce sync.Once
	stopErr  error
}

// NewRuntime creates a runtime in the idle state.
func NewRuntime(cfg Config) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: cfg.Logger.With(log.Str("component", "runtime")),
		state:  StateIdle,
	}
}

// State returns the current lifecycle state.
func (r *Runtime) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// ShutdownTimeout returns the configured teardown budget.
func (r *Runtime) ShutdownTimeout() time.Duration {
	return r.cfg.ShutdownTimeout
}

func (r *Runtime) setState(s State) {
	r.mu.Lock()
	prev := r.state
	r.state = s
	r.mu.Unlock()
	r.logger.Debug("state changed", log.Str("from", prev.String()), log.Str("to", s.String()))
}

// Start connects the store, then the broker, then opens the listeners and
// launches background tasks. Any failure releases what was already acquired
// and leaves the runtime Failed.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateIdle {
		state := r.state
		r.mu.Unlock()
		return coreerrors.New(coreerrors.CodeAborted, "runtime already started: "+state.String())
	}
	r.state = StateConnectingStore
	r.mu.Unlock()

	r.logger.Info("starting", log.Str("store", r.cfg.Store.Name()), log.Str("broker", r.cfg.Broker.Name()))
	if err := r.cfg.Store.Connect(ctx); err != nil {
		return r.fail(err, "store")
	}

	r.setState(StateConnectingBroker)
	if err := r.cfg.Broker.Connect(ctx); err != nil {
		r.release(ctx, r.cfg.Store)
		return r.fail(err, "broker")
	}

	if err := r.cfg.Listener.Start(ctx); err != nil {
		r.release(ctx, r.cfg.Broker, r.cfg.Store)
		return r.fail(err, r.cfg.Listener.Name())
	}

	for _, l := range r.cfg.Extra {
		if err := l.Start(ctx); err != nil {
			r.closeListeners(ctx, r.extras)
			r.closeListeners(ctx, []Listener{r.cfg.Listener})
			r.release(ctx, r.cfg.Broker, r.cfg.Store)
			return r.fail(err, l.Name())
		}
		r.extras = append(r.extras, l)
	}

	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.taskCancel = cancel
	for _, task := range r.cfg.Tasks {
		r.tasks.Add(1)
		go r.runTask(taskCtx, task)
	}

	r.setState(StateServing)
	r.logger.Info("service ready")
	return nil
}

func (r *Runtime) runTask(ctx context.Context, task Task) {
	defer r.tasks.Done()
	if err := task.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Error(err, "background task failed", log.Str("task", task.Name))
	}
}

func (r *Runtime) fail(err error, step string) error {
	r.logger.Error(err, "startup failed", log.Str("step", step))
	r.setState(StateFailed)
	return err
}

// release disconnects deps in order, logging failures only.
func (r *Runtime) release(ctx context.Context, deps ...Dependency) {
	for _, dep := range deps {
		if err := dep.Disconnect(ctx); err != nil {
			r.logger.Error(err, "release failed", log.Str("target", dep.Name()))
		}
	}
}

func (r *Runtime) closeListeners(ctx context.Context, listeners []Listener) []error {
	var errs []error
	for i := len(listeners) - 1; i >= 0; i-- {
		l := listeners[i]
		if err := l.Close(ctx); err != nil {
			r.logger.Error(err, "listener close failed", log.Str("listener", l.Name()))
			errs = append(errs, err)
		}
	}
	return errs
}

// Stop runs the teardown sequence at most once. Later calls return the
// first result.
func (r *Runtime) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() {
		r.stopErr = r.stop(ctx)
	})
	return r.stopErr
}

func (r *Runtime) stop(ctx context.Context) error {
	switch r.State() {
	case StateServing:
	case StateIdle:
		r.setState(StateStopped)
		return nil
	default:
		// Start already released everything it acquired.
		return nil
	}

	r.setState(StateShuttingDown)
	r.logger.Info("shutting down")

	var errs []error
	if err := r.cfg.Broker.Disconnect(ctx); err != nil {
		r.logger.Error(err, "disconnect failed", log.Str("target", r.cfg.Broker.Name()))
		errs = append(errs, err)
	}

	errs = append(errs, r.closeListeners(ctx, []Listener{r.cfg.Listener})...)
	errs = append(errs, r.closeListeners(ctx, r.extras)...)

	if err := r.stopTasks(ctx); err != nil {
		r.logger.Error(err, "background tasks did not stop")
		errs = append(errs, err)
	}

	if err := r.cfg.Store.Disconnect(ctx); err != nil {
		r.logger.Error(err, "disconnect failed", log.Str("target", r.cfg.Store.Name()))
		errs = append(errs, err)
	}

	r.setState(StateStopped)
	if len(errs) > 0 {
		err := coreerrors.Join(errs...)
		r.logger.Error(err, "shutdown completed with errors", log.Int("errors", len(errs)))
		return err
	}
	r.logger.Info("shutdown complete")
	return nil
}

func (r *Runtime) stopTasks(ctx context.Context) error {
	if r.taskCancel == nil {
		return nil
	}
	r.taskCancel()

	done := make(chan struct{})
	go func() {
		r.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return coreerrors.Wrap(coreerrors.CodeDeadlineExceeded, "stop tasks", ctx.Err())
	}
}
