// Package brokerx connects the service to its message-broker consumer group.
//
// Overview:
//   - Responsibility: Join the consumer group, subscribe to one topic, log every message
//   - Key Types: Connector, Options, Consumer, Message
//   - Concurrency Model: One receive goroutine per Connector, awaited by Disconnect
//   - Error Semantics: ConfigError for missing brokers, ConnectError/DisconnectError for I/O
//
// Usage:
//
//	conn := brokerx.NewConnector(brokerx.Options{Brokers: []string{"localhost:9092"}, Logger: logger})
//	if err := conn.Connect(ctx); err != nil { return err }
//	defer conn.Disconnect(context.Background())
package brokerx

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	coreerrors "github.com/red2n/opentele/core/errors"
	"github.com/red2n/opentele/core/log"
	"github.com/red2n/opentele/dialx"
)

const (
	// Target names the broker in logs and errors.
	Target = "message broker"

	DefaultClientID = "openTele"
	DefaultGroupID  = "grpOpenTele"
	DefaultTopic    = "net.navin.connection"

	// BrokersKey is the configuration key of the broker list.
	BrokersKey = "KAFKA_BROKERS"
)

// Handler processes a received message after it has been logged.
type Handler func(ctx context.Context, msg Message)

// Options holds configuration for a Connector.
type Options struct {
	Brokers        []string      // Seed brokers, host:port
	ClientID       string        // Client identity (default openTele)
	GroupID        string        // Consumer group (default grpOpenTele)
	Topic          string        // Subscribed topic (default net.navin.connection)
	ConnectTimeout time.Duration // Connection deadline (default 30s)
	Logger         log.Logger
	Factory        Factory       // Consumer factory (default NewKafkaConsumer)
	Handler        Handler       // Optional per-message processing
	OnMessage      func(Message) // Optional metrics hook
}

// Connector owns at most one live consumer and its receive loop.
type Connector struct {
	opts   Options
	logger log.Logger

	mu         sync.Mutex
	connecting bool
	consumer   Consumer
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConnector creates a connector. Nothing is dialed until Connect.
func NewConnector(opts Options) *Connector {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.ClientID == "" {
		opts.ClientID = DefaultClientID
	}
	if opts.GroupID == "" {
		opts.GroupID = DefaultGroupID
	}
	if opts.Topic == "" {
		opts.Topic = DefaultTopic
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = dialx.DefaultDeadline
	}
	if opts.Factory == nil {
		opts.Factory = NewKafkaConsumer
	}

	return &Connector{
		opts:   opts,
		logger: opts.Logger.With(log.Str("component", "broker")),
	}
}

// Name returns "message broker".
func (c *Connector) Name() string {
	return Target
}

// Topic returns the subscribed topic.
func (c *Connector) Topic() string {
	return c.opts.Topic
}

// Connect joins the consumer group within the deadline, subscribes to the
// topic exactly once and starts the receive loop.
func (c *Connector) Connect(ctx context.Context) error {
	brokers := cleanBrokers(c.opts.Brokers)
	if len(brokers) == 0 {
		err := coreerrors.NewConfigError(BrokersKey, "at least one broker address is required")
		c.logger.Error(err, "broker list missing")
		return err
	}

	c.mu.Lock()
	if c.consumer != nil || c.connecting {
		c.mu.Unlock()
		return coreerrors.New(coreerrors.CodeAborted, "message broker already connected")
	}
	c.connecting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
	}()

	c.logger.Info("attempting to connect",
		log.Str("target", Target),
		log.Any("brokers", brokers),
		log.Str("client_id", c.opts.ClientID),
		log.Str("group_id", c.opts.GroupID),
		log.Dur("timeout", c.opts.ConnectTimeout))

	clientOpts := ClientOptions{
		Brokers:  brokers,
		ClientID: c.opts.ClientID,
		GroupID:  c.opts.GroupID,
		Logger:   c.logger,
	}
	att := dialx.RunWithRelease(ctx, Target, c.opts.ConnectTimeout,
		func(ctx context.Context) (Consumer, error) {
			consumer, err := c.opts.Factory(clientOpts)
			if err != nil {
				return nil, err
			}
			if err := consumer.Ping(ctx); err != nil {
				consumer.Close()
				return nil, err
			}
			return consumer, nil
		},
		func(consumer Consumer) {
			if consumer != nil {
				consumer.Close()
			}
		},
	)

	consumer, err := att.Result()
	if err != nil {
		if att.Outcome == dialx.TimedOut {
			c.logger.Error(err, "connection timed out", log.Str("target", Target))
		} else {
			c.logger.Error(err, "connection failed", log.Str("target", Target))
		}
		return err
	}

	consumer.Subscribe(c.opts.Topic)
	c.logger.Info("connected",
		log.Str("target", Target),
		log.Str("topic", c.opts.Topic),
		log.Dur("elapsed", att.Elapsed))

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.consumer, c.cancel, c.done = consumer, cancel, done
	c.mu.Unlock()

	go c.receive(loopCtx, consumer, done)
	return nil
}

// receive polls until ctx is cancelled or the client is closed.
func (c *Connector) receive(ctx context.Context, consumer Consumer, done chan struct{}) {
	defer close(done)

	for {
		fetch, err := consumer.Poll(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, ErrClosed) {
				c.logger.Error(err, "receive loop stopped unexpectedly")
			}
			c.logger.Debug("receive loop stopped")
			return
		}

		for _, ferr := range fetch.Errors {
			c.logger.Error(ferr, "fetch failed", log.Str("topic", c.opts.Topic))
		}
		for _, msg := range fetch.Messages {
			c.handle(ctx, msg)
		}
	}
}

func (c *Connector) handle(ctx context.Context, msg Message) {
	c.logger.Info("received message",
		log.Str("topic", msg.Topic),
		log.Any("partition", msg.Partition),
		log.Any("offset", msg.Offset),
		log.Str("value", string(msg.Value)))

	if c.opts.OnMessage != nil {
		c.opts.OnMessage(msg)
	}
	if c.opts.Handler != nil {
		c.opts.Handler(ctx, msg)
	}
}

// Disconnect stops the receive loop, leaves the group and closes the client.
// It is a no-op when not connected.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	consumer, cancel, done := c.consumer, c.cancel, c.done
	c.consumer, c.cancel, c.done = nil, nil, nil
	c.mu.Unlock()

	if consumer == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		c.logger.Warn("receive loop still running at disconnect deadline")
	}

	leaveErr := consumer.Leave(ctx)
	consumer.Close()

	if leaveErr != nil {
		derr := &coreerrors.DisconnectError{Target: Target, Err: leaveErr}
		c.logger.Error(derr, "disconnect failed")
		return derr
	}

	c.logger.Info("disconnected", log.Str("target", Target))
	return nil
}

// Ping checks broker reachability through the live client.
func (c *Connector) Ping(ctx context.Context) error {
	c.mu.Lock()
	consumer := c.consumer
	c.mu.Unlock()

	if consumer == nil {
		return coreerrors.New(coreerrors.CodeUnavailable, "message broker not connected")
	}
	return consumer.Ping(ctx)
}

// Close disconnects with a background context.
func (c *Connector) Close() error {
	return c.Disconnect(context.Background())
}

// Connected reports whether a consumer is held.
func (c *Connector) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consumer != nil
}

func cleanBrokers(brokers []string) []string {
	out := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
