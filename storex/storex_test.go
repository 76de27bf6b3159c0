package storex

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	coreerrors "github.com/red2n/opentele/core/errors"
	"github.com/red2n/opentele/testingx"
)

// mockStore is a mock implementation of the Store interface.
type mockStore struct {
	pingErr  error
	closeErr error
	closed   atomic.Int32
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockStore) Close() error {
	m.closed.Add(1)
	return m.closeErr
}

type fakeSession struct {
	firstID       any
	firstErr      error
	disconnectErr error
	disconnects   atomic.Int32
}

func (f *fakeSession) Ping(ctx context.Context) error { return nil }

func (f *fakeSession) FirstID(ctx context.Context) (any, error) { return f.firstID, f.firstErr }

func (f *fakeSession) Collection() *mongo.Collection { return nil }

func (f *fakeSession) Disconnect(ctx context.Context) error {
	f.disconnects.Add(1)
	return f.disconnectErr
}

func dialerFor(sess Session, err error, calls *atomic.Int32) Dialer {
	return func(ctx context.Context, opts DialOptions) (Session, error) {
		if calls != nil {
			calls.Add(1)
		}
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	ctx := context.Background()

	assert.Empty(t, registry.List())
	assert.NoError(t, registry.Ping(ctx))

	store1 := &mockStore{}
	require.NoError(t, registry.Register("store1", store1))
	assert.Error(t, registry.Register("store1", store1), "duplicate registration")
	assert.Error(t, registry.Register("", store1), "empty name")
	assert.Error(t, registry.Register("nil", nil), "nil store")

	got, exists := registry.Get("store1")
	assert.True(t, exists)
	assert.Same(t, store1, got)

	_, exists = registry.Get("nonexistent")
	assert.False(t, exists)

	require.NoError(t, registry.Register("broker", &mockStore{}))
	assert.Equal(t, []string{"broker", "store1"}, registry.List())

	require.NoError(t, registry.Unregister("store1"))
	assert.Error(t, registry.Unregister("store1"))
}

func TestRegistry_PingAndCloseErrors(t *testing.T) {
	registry := NewRegistry()
	failing := &mockStore{pingErr: errors.New("no primary"), closeErr: errors.New("busy")}
	healthy := &mockStore{}
	require.NoError(t, registry.Register("failing", failing))
	require.NoError(t, registry.Register("healthy", healthy))

	err := registry.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store failing ping failed")

	err = registry.Close()
	require.Error(t, err)
	assert.Equal(t, int32(1), healthy.closed.Load(), "every store is closed even if one fails")
}

func TestDocumentStore_EmptyURI(t *testing.T) {
	var calls atomic.Int32
	logger := testingx.NewMockLogger(t)
	store := NewDocumentStore(DocumentOptions{Logger: logger, Dialer: dialerFor(&fakeSession{}, nil, &calls)})

	err := store.Connect(context.Background())

	var ce *coreerrors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "MONGO_CONNECTION_STRING", ce.Key)
	assert.Zero(t, calls.Load(), "no dial without a connection string")
	logger.AssertNotLogged("INFO", "attempting to connect")
}

func TestDocumentStore_ConnectSucceeded(t *testing.T) {
	logger := testingx.NewMockLogger(t)
	sess := &fakeSession{firstID: "guest-1"}
	store := NewDocumentStore(DocumentOptions{
		URI:    "mongodb://localhost:27017",
		Logger: logger,
		Dialer: dialerFor(sess, nil, nil),
	})

	require.NoError(t, store.Connect(context.Background()))
	assert.True(t, store.Connected())
	assert.Equal(t, "document store", store.Name())
	logger.AssertLogged("INFO", "attempting to connect")
	logger.AssertLogged("INFO", "connected")

	require.Eventually(t, func() bool {
		return logger.Count("INFO", "sample document") == 1
	}, time.Second, 5*time.Millisecond)

	entry := logger.Find("INFO", "sample document")[0]
	id, _ := entry.Field("id")
	assert.Equal(t, "guest-1", id)
	collection, _ := entry.Field("collection")
	assert.Equal(t, DefaultCollection, collection)

	require.NoError(t, store.Disconnect(context.Background()))
	assert.False(t, store.Connected())
}

func TestDocumentStore_EmptyCollectionProbe(t *testing.T) {
	logger := testingx.NewMockLogger(t)
	store := NewDocumentStore(DocumentOptions{
		URI:    "mongodb://localhost:27017",
		Logger: logger,
		Dialer: dialerFor(&fakeSession{firstErr: ErrEmptyCollection}, nil, nil),
	})

	require.NoError(t, store.Connect(context.Background()))
	require.NoError(t, store.Disconnect(context.Background()))

	logger.AssertLogged("INFO", "collection is empty")
}

func TestDocumentStore_ConnectTimedOut(t *testing.T) {
	logger := testingx.NewMockLogger(t)
	store := NewDocumentStore(DocumentOptions{
		URI:     "mongodb://unreachable:27017",
		Timeout: 20 * time.Millisecond,
		Logger:  logger,
		Dialer: func(ctx context.Context, opts DialOptions) (Session, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	err := store.Connect(context.Background())

	assert.True(t, coreerrors.IsTimeout(err))
	assert.Equal(t, "connect document store: timed out", err.Error())
	assert.False(t, store.Connected())
	logger.AssertLogged("ERROR", "connection timed out")
}

func TestDocumentStore_ConnectFailed(t *testing.T) {
	logger := testingx.NewMockLogger(t)
	cause := errors.New("authentication failed")
	store := NewDocumentStore(DocumentOptions{
		URI:    "mongodb://localhost:27017",
		Logger: logger,
		Dialer: dialerFor(nil, cause, nil),
	})

	err := store.Connect(context.Background())

	var ce *coreerrors.ConnectError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, coreerrors.ReasonUnderlying, ce.Reason)
	assert.ErrorIs(t, err, cause)
	logger.AssertLogged("ERROR", "connection failed")
}

func TestDocumentStore_DisconnectIdempotent(t *testing.T) {
	sess := &fakeSession{}
	store := NewDocumentStore(DocumentOptions{URI: "mongodb://h", Dialer: dialerFor(sess, nil, nil)})

	require.NoError(t, store.Disconnect(context.Background()), "disconnect before connect")
	require.NoError(t, store.Connect(context.Background()))
	require.NoError(t, store.Disconnect(context.Background()))
	require.NoError(t, store.Close())

	assert.Equal(t, int32(1), sess.disconnects.Load())
}

func TestDocumentStore_DisconnectFailure(t *testing.T) {
	sess := &fakeSession{disconnectErr: errors.New("socket closed")}
	store := NewDocumentStore(DocumentOptions{URI: "mongodb://h", Dialer: dialerFor(sess, nil, nil)})
	require.NoError(t, store.Connect(context.Background()))

	err := store.Disconnect(context.Background())

	var de *coreerrors.DisconnectError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "document store", de.Target)
	assert.Equal(t, coreerrors.CodeInternal, coreerrors.CodeOf(err))
}

func TestDocumentStore_ConnectTwice(t *testing.T) {
	var calls atomic.Int32
	store := NewDocumentStore(DocumentOptions{URI: "mongodb://h", Dialer: dialerFor(&fakeSession{}, nil, &calls)})
	require.NoError(t, store.Connect(context.Background()))
	defer store.Close()

	assert.Error(t, store.Connect(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDocumentStore_PingRequiresSession(t *testing.T) {
	store := NewDocumentStore(DocumentOptions{URI: "mongodb://h", Dialer: dialerFor(&fakeSession{}, nil, nil)})

	assert.True(t, coreerrors.IsCode(store.Ping(context.Background()), coreerrors.CodeUnavailable))
	assert.Nil(t, store.Collection())

	require.NoError(t, store.Connect(context.Background()))
	defer store.Close()
	assert.NoError(t, store.Ping(context.Background()))
}

func TestDocumentStore_RegistryContract(t *testing.T) {
	registry := NewRegistry()
	store := NewDocumentStore(DocumentOptions{URI: "mongodb://h", Dialer: dialerFor(&fakeSession{}, nil, nil)})
	require.NoError(t, registry.Register(store.Name(), store))
	require.NoError(t, store.Connect(context.Background()))

	assert.NoError(t, registry.Ping(context.Background()))
	assert.NoError(t, registry.Close())
	assert.False(t, store.Connected())
}

func TestDocumentStore_ConcurrentConnectKeepsOneSession(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	sess := &fakeSession{}
	store := NewDocumentStore(DocumentOptions{
		URI: "mongodb://h",
		Dialer: func(ctx context.Context, opts DialOptions) (Session, error) {
			calls.Add(1)
			select {
			case <-gate:
				return sess, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	})

	first := make(chan error, 1)
	go func() { first <- store.Connect(context.Background()) }()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	err := store.Connect(context.Background())
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeAborted))

	close(gate)
	require.NoError(t, <-first)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, store.Close())
	assert.Equal(t, int32(1), sess.disconnects.Load())
}
