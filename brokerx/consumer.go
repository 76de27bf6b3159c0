package brokerx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/red2n/opentele/core/log"
)

// ErrClosed is returned by Consumer.Poll once the client has been closed.
var ErrClosed = errors.New("consumer closed")

// Message is one record received from the broker.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
}

// Fetch is the result of one poll. Errors are per-partition and non-fatal.
type Fetch struct {
	Messages []Message
	Errors   []error
}

// Consumer is a consumer-group client.
type Consumer interface {
	// Ping verifies at least one seed broker is reachable.
	Ping(ctx context.Context) error
	// Subscribe adds topics to the group subscription. Topics already
	// subscribed are ignored.
	Subscribe(topics ...string)
	// Poll blocks until records arrive. It returns an error only when ctx
	// is done or the client is closed.
	Poll(ctx context.Context) (Fetch, error)
	// Leave leaves the consumer group, committing marked offsets.
	Leave(ctx context.Context) error
	// Close releases the client.
	Close()
}

// ClientOptions describes the client built by a Factory.
type ClientOptions struct {
	Brokers  []string
	ClientID string
	GroupID  string
	Logger   log.Logger
}

// Factory creates a Consumer without contacting the brokers.
type Factory func(opts ClientOptions) (Consumer, error)

type kafkaConsumer struct {
	client *kgo.Client

	mu     sync.Mutex
	topics map[string]struct{}
}

// NewKafkaConsumer builds a franz-go consumer-group client that starts from
// the earliest offset when the group has no committed position. It consumes
// nothing until Subscribe.
func NewKafkaConsumer(opts ClientOptions) (Consumer, error) {
	kopts := []kgo.Opt{
		kgo.SeedBrokers(opts.Brokers...),
		kgo.ClientID(opts.ClientID),
		kgo.ConsumerGroup(opts.GroupID),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
	if opts.Logger != nil {
		kopts = append(kopts, kgo.WithLogger(NewKgoLogger(opts.Logger)))
	}

	client, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &kafkaConsumer{client: client, topics: make(map[string]struct{})}, nil
}

func (c *kafkaConsumer) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

func (c *kafkaConsumer) Subscribe(topics ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var added []string
	for _, topic := range topics {
		if _, ok := c.topics[topic]; !ok {
			c.topics[topic] = struct{}{}
			added = append(added, topic)
		}
	}
	if len(added) > 0 {
		c.client.AddConsumeTopics(added...)
	}
}

func (c *kafkaConsumer) Poll(ctx context.Context) (Fetch, error) {
	fetches := c.client.PollFetches(ctx)
	if fetches.IsClientClosed() {
		return Fetch{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return Fetch{}, err
	}

	var out Fetch
	fetches.EachError(func(topic string, partition int32, err error) {
		out.Errors = append(out.Errors, fmt.Errorf("%s[%d]: %w", topic, partition, err))
	})
	fetches.EachRecord(func(r *kgo.Record) {
		out.Messages = append(out.Messages, Message{
			Topic:     r.Topic,
			Partition: r.Partition,
			Offset:    r.Offset,
			Key:       r.Key,
			Value:     r.Value,
			Timestamp: r.Timestamp,
		})
	})
	return out, nil
}

func (c *kafkaConsumer) Leave(ctx context.Context) error {
	return c.client.LeaveGroupContext(ctx)
}

func (c *kafkaConsumer) Close() {
	c.client.Close()
}

// kgoLogger adapts our logger to franz-go's kgo.Logger interface.
type kgoLogger struct {
	logger log.Logger
	level  kgo.LogLevel
}

// NewKgoLogger bridges client logs into logger at info level and above.
func NewKgoLogger(logger log.Logger) kgo.Logger {
	return &kgoLogger{logger: logger, level: kgo.LogLevelInfo}
}

func (l *kgoLogger) Level() kgo.LogLevel {
	return l.level
}

func (l *kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	switch level {
	case kgo.LogLevelError:
		l.logger.Error(errorFrom(keyvals), msg, keyvals...)
	case kgo.LogLevelWarn:
		l.logger.Warn(msg, keyvals...)
	case kgo.LogLevelInfo:
		l.logger.Info(msg, keyvals...)
	case kgo.LogLevelDebug:
		l.logger.Debug(msg, keyvals...)
	}
}

// errorFrom returns the first error value among keyvals, if any.
func errorFrom(keyvals []any) error {
	for i := 1; i < len(keyvals); i += 2 {
		if err, ok := keyvals[i].(error); ok {
			return err
		}
	}
	return nil
}
