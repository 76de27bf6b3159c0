// Package httpx provides the HTTP surface of the service.
//
// # Overview
//
// httpx builds a chi router with request ids, activity tracking, request
// logging, panic recovery and security headers, and serves it through a
// Server that binds synchronously and shuts down gracefully. A second,
// operational router exposes Prometheus metrics and a dependency health check.
//
// # Features
//
//   - GET /getDirectories and GET /getFiles list the home directory's subdirectories
//   - Unmatched routes and methods answer 404 {"error":"Route not found"}
//   - Completions logged at INFO for 2xx and ERROR otherwise
//   - Registered routes logged once the listener is up
//   - errors.Code to HTTP status mapping for JSON error responses
//
// # Layer
//
// httpx depends on core/log, core/errors and logx.
package httpx
