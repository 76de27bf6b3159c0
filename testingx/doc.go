// Package testingx provides testing helpers and fakes for opentele packages.
//
// # Overview
//
// testingx contains small utilities to speed up unit tests: a mock logger
// with capture and assertions, a manually advanced clock for idle accounting,
// and an event recorder for asserting lifecycle ordering.
//
// # Features
//
//   - MockLogger with in-memory capture, field lookup and assertions
//   - Clock for deterministic time-based tests
//   - Recorder for ordered event capture across goroutines
//   - Error assertion helpers for core/errors codes
//
// # Usage
//
//	logger := testingx.NewMockLogger(t)
//	rec := testingx.NewRecorder()
//	rec.Record("store.connect")
//
// # Layer
//
// testingx is an auxiliary package for tests only and depends on core packages.
package testingx
