// Package internal provides internal implementation details for storex.
package internal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store defines the interface for storage backends.
type Store interface {
	Ping(ctx context.Context) error
	Close() error
}

// DefaultPingTimeout bounds a registry-wide health check.
const DefaultPingTimeout = 5 * time.Second

// Registry manages multiple dependency connections and their health.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]Store
}

// NewRegistry creates a new registry.
func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[string]Store),
	}
}

// Register registers a backend with the given name.
func (r *Registry) Register(name string, store Store) error {
	if name == "" {
		return fmt.Errorf("store name is required")
	}
	if store == nil {
		return fmt.Errorf("store cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stores[name]; exists {
		return fmt.Errorf("store %s already registered", name)
	}

	r.stores[name] = store
	return nil
}

// Unregister removes a backend from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stores[name]; !exists {
		return fmt.Errorf("store %s not found", name)
	}

	delete(r.stores, name)
	return nil
}

// Ping performs health checks on all registered backends.
func (r *Registry) Ping(ctx context.Context) error {
	stores := r.snapshot()
	if len(stores) == 0 {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()

	var errs []error
	for _, name := range sortedNames(stores) {
		if err := stores[name].Ping(pingCtx); err != nil {
			errs = append(errs, fmt.Errorf("store %s ping failed: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// Close closes all registered backends.
func (r *Registry) Close() error {
	stores := r.snapshot()

	var errs []error
	for _, name := range sortedNames(stores) {
		if err := stores[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("store %s close failed: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// List returns the names of all registered backends in sorted order.
func (r *Registry) List() []string {
	return sortedNames(r.snapshot())
}

// Get returns a registered backend by name.
func (r *Registry) Get(name string) (Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, exists := r.stores[name]
	return store, exists
}

func (r *Registry) snapshot() map[string]Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Store, len(r.stores))
	for k, v := range r.stores {
		out[k] = v
	}
	return out
}

func sortedNames(stores map[string]Store) []string {
	names := make([]string, 0, len(stores))
	for name := range stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
