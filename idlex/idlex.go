// Package idlex tracks how long the service goes without inbound requests.
//
// Overview:
//   - Responsibility: Accumulate idle time between inbound requests
//   - Key Types: State (last activity + total idle), Monitor (periodic check)
//   - Concurrency Model: State is guarded by a single mutex; Monitor runs one goroutine
//   - Error Semantics: Run returns nil when its context is cancelled
//
// Usage:
//
//	state := idlex.NewState(time.Now())
//	mon, _ := idlex.NewMonitor(idlex.Options{Logger: logger, State: state})
//	go mon.Run(ctx)
package idlex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/red2n/opentele/core/log"
)

const (
	// DefaultInterval is the period between idle checks.
	DefaultInterval = 60 * time.Second
	// DefaultThreshold is the minimum quiet period that counts as idle.
	DefaultThreshold = 60 * time.Second
)

// Observation is the result of a single idle check.
type Observation struct {
	Elapsed   time.Duration // time since last activity at check time
	Recorded  bool          // elapsed was folded into the total
	TotalIdle time.Duration // accumulated idle time after the check
}

// State holds the last activity time and the accumulated idle duration.
// TotalIdle never decreases.
type State struct {
	mu           sync.Mutex
	lastActivity time.Time
	totalIdle    time.Duration
}

// NewState creates a state whose last activity is now.
func NewState(now time.Time) *State {
	return &State{lastActivity: now}
}

// Touch records inbound activity at now. Older timestamps are ignored.
func (s *State) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastActivity) {
		s.lastActivity = now
	}
}

// Check folds the quiet period into the total when it reaches threshold and
// restarts the window at now, so a gap is never counted twice.
func (s *State) Check(now time.Time, threshold time.Duration) Observation {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := now.Sub(s.lastActivity)
	if elapsed < 0 {
		elapsed = 0
	}

	obs := Observation{Elapsed: elapsed}
	if elapsed >= threshold {
		s.totalIdle += elapsed
		s.lastActivity = now
		obs.Recorded = true
	}
	obs.TotalIdle = s.totalIdle
	return obs
}

// TotalIdle returns the accumulated idle duration.
func (s *State) TotalIdle() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalIdle
}

// LastActivity returns the time of the last recorded activity or check reset.
func (s *State) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Options configures a Monitor.
type Options struct {
	Logger    log.Logger
	State     *State
	Interval  time.Duration         // default 60s
	Threshold time.Duration         // default 60s
	Now       func() time.Time      // default time.Now
	OnIdle    func(obs Observation) // called after each recorded idle window
}

// Monitor periodically checks State and logs accumulated idle time.
type Monitor struct {
	logger    log.Logger
	state     *State
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	onIdle    func(Observation)
}

// NewMonitor creates a monitor. State is required.
func NewMonitor(opts Options) (*Monitor, error) {
	if opts.State == nil {
		return nil, fmt.Errorf("idle state is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Monitor{
		logger:    opts.Logger,
		state:     opts.State,
		interval:  opts.Interval,
		threshold: opts.Threshold,
		now:       opts.Now,
		onIdle:    opts.OnIdle,
	}, nil
}

// State returns the monitored state.
func (m *Monitor) State() *State {
	return m.state
}

// Tick performs one idle check.
func (m *Monitor) Tick() Observation {
	obs := m.state.Check(m.now(), m.threshold)
	if obs.Recorded {
		m.logger.Info("total idle time",
			log.Int("total_idle_seconds", int(obs.TotalIdle/time.Second)),
			log.Dur("elapsed", obs.Elapsed))
		if m.onIdle != nil {
			m.onIdle(obs)
		}
	}
	return obs
}

// Run checks idle time every interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Debug("idle monitor started",
		log.Dur("interval", m.interval),
		log.Dur("threshold", m.threshold))

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("idle monitor stopped")
			return nil
		case <-ticker.C:
			m.Tick()
		}
	}
}
