// Package httpx provides the HTTP surface: router, middleware, listener and JSON helpers.
//
// Overview:
//   - Responsibility: Serve directory listings, log requests, report activity
//   - Key Types: Server, RouterOptions, ErrorResponse
//   - Concurrency Model: All handlers and middleware are safe for concurrent use
//   - Error Semantics: Handler failures become JSON error responses, never process exits
//
// Usage:
//
//	router := httpx.NewRouter(httpx.RouterOptions{Logger: logger, Activity: idleState})
//	srv := httpx.NewServer(httpx.ServerOptions{Name: "http", Addr: ":8080", Handler: router, Routes: router, Logger: logger})
//	if err := srv.Start(ctx); err != nil { return err }
//	defer srv.Close(context.Background())
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/red2n/opentele/core/errors"
	"github.com/red2n/opentele/httpx/internal"
)

// RouteNotFound is the error text of unmatched routes and methods.
const RouteNotFound = "Route not found"

// ErrorResponse represents a standard JSON error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error response.
func WriteError(w http.ResponseWriter, err error, status int) error {
	return WriteJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
	})
}

// WriteCodedError writes err with the status mapped from its errors.Code.
func WriteCodedError(w http.ResponseWriter, err error) error {
	return WriteError(w, err, StatusOf(errors.CodeOf(err)))
}

// StatusOf maps an error code to an HTTP status. Unknown codes map to 500.
func StatusOf(code errors.Code) int {
	switch code {
	case errors.CodeInvalidArgument:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodePermissionDenied:
		return http.StatusForbidden
	case errors.CodeAborted:
		return http.StatusConflict
	case errors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case errors.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// SecurityHeaders adds security headers to HTTP response.
type SecurityHeaders struct {
	ContentTypeOptions    bool   // X-Content-Type-Options: nosniff
	FrameOptions          bool   // X-Frame-Options: DENY
	ReferrerPolicy        bool   // Referrer-Policy: no-referrer
	StrictTransportSec    bool   // Strict-Transport-Security (HSTS)
	HSTSMaxAge            int    // Max age for HSTS in seconds
	ContentSecurityPolicy string // Optional CSP header
}

// DefaultSecurityHeaders returns security headers with sensible defaults.
// HSTS is left to the ingress.
func DefaultSecurityHeaders() SecurityHeaders {
	return SecurityHeaders{
		ContentTypeOptions: true,
		FrameOptions:       true,
		ReferrerPolicy:     true,
		HSTSMaxAge:         31536000,
	}
}

// SecureMiddleware adds security headers to responses.
func SecureMiddleware(headers SecurityHeaders) func(http.Handler) http.Handler {
	internalHeaders := internal.SecurityHeaders{
		ContentTypeOptions:    headers.ContentTypeOptions,
		FrameOptions:          headers.FrameOptions,
		ReferrerPolicy:        headers.ReferrerPolicy,
		StrictTransportSec:    headers.StrictTransportSec,
		HSTSMaxAge:            headers.HSTSMaxAge,
		ContentSecurityPolicy: headers.ContentSecurityPolicy,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			internal.ApplySecurityHeaders(w, internalHeaders)
			next.ServeHTTP(w, r)
		})
	}
}
