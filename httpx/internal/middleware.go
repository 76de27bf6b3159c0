// Package internal provides internal implementation details for httpx.
package internal

import (
	"fmt"
	"net/http"
)

// SecurityHeaders adds security headers to HTTP response.
type SecurityHeaders struct {
	ContentTypeOptions    bool
	FrameOptions          bool
	ReferrerPolicy        bool
	StrictTransportSec    bool
	HSTSMaxAge            int
	ContentSecurityPolicy string
}

// ApplySecurityHeaders applies security headers to the response writer.
func ApplySecurityHeaders(w http.ResponseWriter, headers SecurityHeaders) {
	h := w.Header()
	if headers.ContentTypeOptions {
		h.Set("X-Content-Type-Options", "nosniff")
	}
	if headers.FrameOptions {
		h.Set("X-Frame-Options", "DENY")
	}
	if headers.ReferrerPolicy {
		h.Set("Referrer-Policy", "no-referrer")
	}
	if headers.StrictTransportSec {
		h.Set("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", headers.HSTSMaxAge))
	}
	if headers.ContentSecurityPolicy != "" {
		h.Set("Content-Security-Policy", headers.ContentSecurityPolicy)
	}
}

// StatusClass returns "2xx", "4xx" and so on.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return fmt.Sprintf("%dxx", status/100)
}
