package internal

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	coreerrors "github.com/red2n/opentele/core/errors"
	"github.com/red2n/opentele/core/log"
	"github.com/red2n/opentele/dialx"
)

const (
	// Target names the document store in logs and errors.
	Target = "document store"
	// DefaultCollection is the collection bound when none is configured.
	DefaultCollection = "rGuestStay"
	// DefaultProbeTimeout bounds the post-connect sample read.
	DefaultProbeTimeout = 5 * time.Second
	// URIKey is the configuration key of the connection string.
	URIKey = "MONGO_CONNECTION_STRING"
)

// DocumentOptions holds configuration for a DocumentStore.
type DocumentOptions struct {
	URI          string
	Database     string
	Collection   string
	Timeout      time.Duration
	ProbeTimeout time.Duration
	Logger       log.Logger
	Dialer       Dialer
}

// DocumentStore owns at most one live Session.
type DocumentStore struct {
	opts   DocumentOptions
	logger log.Logger

	mu          sync.Mutex
	connecting  bool
	session     Session
	probeCancel context.CancelFunc
	probeDone   chan struct{}
}

// NewDocumentStore applies defaults to opts.
func NewDocumentStore(opts DocumentOptions) *DocumentStore {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.Timeout <= 0 {
		opts.Timeout = dialx.DefaultDeadline
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.Dialer == nil {
		opts.Dialer = DialMongo
	}

	return &DocumentStore{
		opts:   opts,
		logger: opts.Logger.With(log.Str("component", "store")),
	}
}

// Name returns the target name.
func (s *DocumentStore) Name() string {
	return Target
}

// Connect dials the store within the configured deadline.
func (s *DocumentStore) Connect(ctx context.Context) error {
	if s.opts.URI == "" {
		err := coreerrors.NewConfigError(URIKey, "connection string is required")
		s.logger.Error(err, "connection string missing")
		return err
	}

	s.mu.Lock()
	if s.session != nil || s.connecting {
		s.mu.Unlock()
		return coreerrors.New(coreerrors.CodeAborted, "document store already connected")
	}
	s.connecting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.connecting = false
		s.mu.Unlock()
	}()

	s.logger.Info("attempting to connect",
		log.Str("target", Target),
		log.Str("collection", s.opts.Collection),
		log.Dur("timeout", s.opts.Timeout))

	dialOpts := DialOptions{
		URI:        s.opts.URI,
		Database:   s.opts.Database,
		Collection: s.opts.Collection,
		Timeout:    s.opts.Timeout,
		Logger:     s.logger,
	}
	att := dialx.RunWithRelease(ctx, Target, s.opts.Timeout,
		func(ctx context.Context) (Session, error) {
			return s.opts.Dialer(ctx, dialOpts)
		},
		func(sess Session) {
			if sess != nil {
				_ = sess.Disconnect(context.Background())
			}
		},
	)

	session, err := att.Result()
	switch att.Outcome {
	case dialx.Succeeded:
		s.mu.Lock()
		s.session = session
		s.mu.Unlock()
		s.logger.Info("connected",
			log.Str("target", Target),
			log.Str("collection", s.opts.Collection),
			log.Dur("elapsed", att.Elapsed))
		s.startProbe(session)
	case dialx.TimedOut:
		s.logger.Error(err, "connection timed out",
			log.Str("target", Target),
			log.Dur("timeout", s.opts.Timeout))
	default:
		s.logger.Error(err, "connection failed",
			log.Str("target", Target),
			log.Dur("elapsed", att.Elapsed))
	}

	return err
}

// startProbe reads one sample document without blocking startup.
func (s *DocumentStore) startProbe(session Session) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ProbeTimeout)
	done := make(chan struct{})

	s.mu.Lock()
	s.probeCancel = cancel
	s.probeDone = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		id, err := session.FirstID(ctx)
		switch {
		case errors.Is(err, ErrEmptyCollection):
			s.logger.Info("collection is empty", log.Str("collection", s.opts.Collection))
		case err != nil:
			s.logger.Warn("sample read failed", log.Str("collection", s.opts.Collection), log.Str("error", err.Error()))
		default:
			s.logger.Info("sample document", log.Str("collection", s.opts.Collection), log.Any("id", id))
		}
	}()
}

// Disconnect releases the session. Calling it again, or before Connect, is a no-op.
func (s *DocumentStore) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	session := s.session
	cancel, done := s.probeCancel, s.probeDone
	s.session, s.probeCancel, s.probeDone = nil, nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if session == nil {
		return nil
	}

	if err := session.Disconnect(ctx); err != nil {
		derr := &coreerrors.DisconnectError{Target: Target, Err: err}
		s.logger.Error(derr, "disconnect failed")
		return derr
	}

	s.logger.Info("disconnected", log.Str("target", Target))
	return nil
}

// Ping checks the live session.
func (s *DocumentStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	if session == nil {
		return coreerrors.New(coreerrors.CodeUnavailable, "document store not connected")
	}
	return session.Ping(ctx)
}

// Close disconnects with a background context.
func (s *DocumentStore) Close() error {
	return s.Disconnect(context.Background())
}

// Connected reports whether a session is held.
func (s *DocumentStore) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// Collection returns the bound collection, or nil when not connected.
func (s *DocumentStore) Collection() *mongo.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	return s.session.Collection()
}
