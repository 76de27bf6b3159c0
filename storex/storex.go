// Package storex provides the document-store connector and a health check registry.
//
// Overview:
//   - Responsibility: Connect to MongoDB within a deadline and track dependency health
//   - Key Types: Store interface, DocumentStore, Registry for management
//   - Concurrency Model: All types are safe for concurrent use
//   - Error Semantics: ConfigError for missing settings, ConnectError/DisconnectError for I/O
//
// Usage:
//
//	store := storex.NewDocumentStore(storex.DocumentOptions{URI: uri, Logger: logger})
//	if err := store.Connect(ctx); err != nil { return err }
//	registry := storex.NewRegistry()
//	registry.Register(store.Name(), store)
//	err := registry.Ping(ctx)
package storex

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/red2n/opentele/core/log"
	"github.com/red2n/opentele/storex/internal"
)

// Store defines the interface for dependency backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Ping checks if the backend is healthy.
	Ping(ctx context.Context) error

	// Close closes the backend connection.
	Close() error
}

// Registry manages multiple dependency connections and their health.
// This is a thin wrapper around internal.Registry.
type Registry struct {
	impl *internal.Registry
}

// NewRegistry creates a new registry.
func NewRegistry() *Registry {
	return &Registry{impl: internal.NewRegistry()}
}

// Register registers a backend with the given name.
func (r *Registry) Register(name string, store Store) error {
	return r.impl.Register(name, store)
}

// Unregister removes a backend from the registry.
func (r *Registry) Unregister(name string) error {
	return r.impl.Unregister(name)
}

// Ping performs health checks on all registered backends.
func (r *Registry) Ping(ctx context.Context) error {
	return r.impl.Ping(ctx)
}

// Close closes all registered backends.
func (r *Registry) Close() error {
	return r.impl.Close()
}

// List returns the names of all registered backends.
func (r *Registry) List() []string {
	return r.impl.List()
}

// Get returns a registered backend by name.
func (r *Registry) Get(name string) (Store, bool) {
	return r.impl.Get(name)
}

const (
	// DefaultCollection is the collection bound when none is configured.
	DefaultCollection = internal.DefaultCollection
	// DefaultProbeTimeout bounds the post-connect sample read.
	DefaultProbeTimeout = internal.DefaultProbeTimeout
	// URIKey is the configuration key of the connection string.
	URIKey = internal.URIKey
)

// Session is a live, verified document-store connection.
type Session = internal.Session

// DialOptions describes one dial.
type DialOptions = internal.DialOptions

// Dialer opens a Session. DialMongo is used when none is given.
type Dialer = internal.Dialer

// ErrEmptyCollection is returned by Session.FirstID on an empty collection.
var ErrEmptyCollection = internal.ErrEmptyCollection

// DocumentOptions holds configuration for the document-store connector.
type DocumentOptions struct {
	URI          string        // Connection string (MONGO_CONNECTION_STRING)
	Database     string        // Database name; falls back to the URI path
	Collection   string        // Bound collection (default rGuestStay)
	Timeout      time.Duration // Connection deadline (default 30s)
	ProbeTimeout time.Duration // Sample read deadline (default 5s)
	Logger       log.Logger    // Logger for store operations
	Dialer       Dialer        // Session factory, for tests
}

// DocumentStore connects to the document store and owns the resulting session.
type DocumentStore struct {
	impl *internal.DocumentStore
}

// NewDocumentStore creates a connector. Nothing is dialed until Connect.
func NewDocumentStore(opts DocumentOptions) *DocumentStore {
	return &DocumentStore{impl: internal.NewDocumentStore(internal.DocumentOptions{
		URI:          opts.URI,
		Database:     opts.Database,
		Collection:   opts.Collection,
		Timeout:      opts.Timeout,
		ProbeTimeout: opts.ProbeTimeout,
		Logger:       opts.Logger,
		Dialer:       opts.Dialer,
	})}
}

// DialMongo dials MongoDB with the official driver.
func DialMongo(ctx context.Context, opts DialOptions) (Session, error) {
	return internal.DialMongo(ctx, opts)
}

// Name returns "document store".
func (s *DocumentStore) Name() string { return s.impl.Name() }

// Connect establishes the session within the configured deadline.
// An empty URI yields errors.ConfigError without dialing.
func (s *DocumentStore) Connect(ctx context.Context) error { return s.impl.Connect(ctx) }

// Disconnect releases the session. It is idempotent.
func (s *DocumentStore) Disconnect(ctx context.Context) error { return s.impl.Disconnect(ctx) }

// Ping checks the live session.
func (s *DocumentStore) Ping(ctx context.Context) error { return s.impl.Ping(ctx) }

// Close implements Store.
func (s *DocumentStore) Close() error { return s.impl.Close() }

// Connected reports whether a session is held.
func (s *DocumentStore) Connected() bool { return s.impl.Connected() }

// Collection returns the bound collection, or nil when not connected.
func (s *DocumentStore) Collection() *mongo.Collection { return s.impl.Collection() }
