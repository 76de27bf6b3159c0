// Package storex defines the document-store connector and health check facilities.
//
// # Overview
//
// storex connects to MongoDB through the official driver inside a bounded
// connection attempt (see dialx), binds a single collection and verifies the
// primary with a ping. Dependencies that expose Ping and Close can be tracked
// in a Registry, which backs the ops health endpoint.
//
// # Features
//
//   - Missing connection string reported as errors.ConfigError before any dial
//   - Timeout and failure reported distinctly as errors.ConnectError
//   - Non-blocking sample read after connect, logged only
//   - Driver logs bridged into core/log through options.LogSink
//   - Idempotent Disconnect; failures reported as errors.DisconnectError
//   - Registry for multi-dependency health checks and graceful close
//
// # Usage
//
//	store := storex.NewDocumentStore(storex.DocumentOptions{
//		URI:     cfg.Mongo.URI,
//		Timeout: cfg.ConnectTimeout,
//		Logger:  logger,
//	})
//	if err := store.Connect(ctx); err != nil { return err }
//	defer store.Disconnect(context.Background())
//
// # Layer
//
// storex is an auxiliary package and depends on core/log, core/errors and dialx.
package storex
