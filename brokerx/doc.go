// Package brokerx provides the consumer-group connector.
//
// # Overview
//
// brokerx builds a franz-go client for a fixed consumer group, verifies
// reachability inside a bounded connection attempt (see dialx), subscribes to
// a single topic and runs a receive loop that logs every message. The loop is
// owned by the Connector and is stopped and awaited by Disconnect before the
// group is left and the client closed.
//
// # Features
//
//   - Empty broker list reported as errors.ConfigError before any dial
//   - Earliest offset when the group has no committed position
//   - Per-partition fetch errors logged without stopping the loop
//   - Client logs bridged into core/log through kgo.Logger
//   - Idempotent Disconnect; failures reported as errors.DisconnectError
//
// # Layer
//
// brokerx is an auxiliary package and depends on core/log, core/errors and dialx.
package brokerx
