// Package internal contains the MongoDB adapter implementation.
package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/red2n/opentele/core/log"
)

// DefaultDatabase is used when neither configuration nor the URI names one.
const DefaultDatabase = "test"

// ErrEmptyCollection is returned by FirstID when the collection has no documents.
var ErrEmptyCollection = errors.New("collection is empty")

// Session is a live, verified connection to the document store.
type Session interface {
	// Ping verifies the primary is reachable.
	Ping(ctx context.Context) error
	// FirstID returns the _id of the first document in the bound collection.
	FirstID(ctx context.Context) (any, error)
	// Collection returns the bound collection handle, nil for fakes.
	Collection() *mongo.Collection
	// Disconnect releases the underlying client.
	Disconnect(ctx context.Context) error
}

// DialOptions describes one dial.
type DialOptions struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
	Logger     log.Logger
}

// Dialer opens a Session. It must honor ctx cancellation.
type Dialer func(ctx context.Context, opts DialOptions) (Session, error)

type mongoSession struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// DialMongo connects with the official driver and verifies the primary with a ping.
func DialMongo(ctx context.Context, opts DialOptions) (Session, error) {
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.Timeout).
		SetConnectTimeout(opts.Timeout)

	if opts.Logger != nil {
		clientOpts.SetLoggerOptions(options.Logger().
			SetSink(&logSink{logger: opts.Logger}).
			SetComponentLevel(options.LogComponentTopology, options.LogLevelInfo).
			SetComponentLevel(options.LogComponentServerSelection, options.LogLevelInfo))
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	db := ResolveDatabase(opts.URI, opts.Database)
	return &mongoSession{
		client: client,
		coll:   client.Database(db).Collection(opts.Collection),
	}, nil
}

func (s *mongoSession) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *mongoSession) FirstID(ctx context.Context) (any, error) {
	var doc bson.M
	if err := s.coll.FindOne(ctx, bson.D{}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEmptyCollection
		}
		return nil, err
	}
	return doc["_id"], nil
}

func (s *mongoSession) Collection() *mongo.Collection {
	return s.coll
}

func (s *mongoSession) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ResolveDatabase picks the configured database, then the one named in the
// URI path, then DefaultDatabase.
func ResolveDatabase(uri, configured string) string {
	if configured != "" {
		return configured
	}
	if cs, err := connstring.Parse(uri); err == nil && cs.Database != "" {
		return cs.Database
	}
	return DefaultDatabase
}

// logSink adapts our logger to the driver's options.LogSink interface.
type logSink struct {
	logger log.Logger
}

func (s *logSink) Info(level int, msg string, kv ...interface{}) {
	fields := append(append([]any{}, kv...), "driver_level", level)
	s.logger.Debug("mongo: "+msg, fields...)
}

func (s *logSink) Error(err error, msg string, kv ...interface{}) {
	s.logger.Error(err, "mongo: "+msg, kv...)
}
