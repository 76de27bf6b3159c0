package httpx

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/red2n/opentele/core/errors"
	"github.com/red2n/opentele/core/log"
	"github.com/red2n/opentele/httpx/internal"
	"github.com/red2n/opentele/logx"
)

// Toucher records inbound activity.
type Toucher interface {
	Touch(now time.Time)
}

// RouterOptions configures the public router.
type RouterOptions struct {
	Logger   log.Logger
	Activity Toucher                // Optional; touched on every request
	Now      func() time.Time       // default time.Now
	HomeDir  func() (string, error) // default os.UserHomeDir
}

// NewRouter builds the chi router serving the directory listing routes.
// Unmatched routes and methods answer 404 {"error":"Route not found"}.
func NewRouter(opts RouterOptions) chi.Router {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HomeDir == nil {
		opts.HomeDir = os.UserHomeDir
	}

	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	if opts.Activity != nil {
		r.Use(Activity(opts.Activity, opts.Now))
	}
	r.Use(RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(SecureMiddleware(DefaultSecurityHeaders()))

	list := directoriesHandler(opts.Logger, opts.HomeDir)
	r.Get("/getDirectories", list)
	r.Get("/getFiles", list)

	notFound := NotFoundHandler(opts.Logger)
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

// directoriesHandler answers with the subdirectory names of the home directory.
func directoriesHandler(logger log.Logger, homeDir func() (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logx.FromContext(r.Context(), logger)

		home, err := homeDir()
		if err != nil {
			err = errors.Wrap(errors.CodeInternal, "resolve home directory", err)
			reqLogger.Error(err, "listing failed")
			_ = WriteCodedError(w, err)
			return
		}

		dirs, err := internal.ListDirectories(home)
		if err != nil {
			err = errors.Wrap(errors.CodeInternal, "list directories", err)
			reqLogger.Error(err, "listing failed", log.Str("path", home))
			_ = WriteCodedError(w, err)
			return
		}

		_ = WriteJSON(w, http.StatusOK, dirs)
	}
}

// NotFoundHandler returns the 404 JSON response used for unmatched routes.
func NotFoundHandler(logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logx.FromContext(r.Context(), logger).Error(nil, "route not found",
			log.Str("method", r.Method),
			log.Str("path", r.URL.Path))
		_ = WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: RouteNotFound})
	}
}

// Activity touches t with the arrival time of every request.
func Activity(t Toucher, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Touch(now())
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs each request on arrival and on completion. Completions
// with a 2xx status are logged at INFO, everything else at ERROR.
func RequestLogger(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logx.FromContext(r.Context(), logger)

			reqLogger.Info("incoming request",
				log.Str("method", r.Method),
				log.Str("path", r.URL.RequestURI()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			kv := []any{
				log.Str("method", r.Method),
				log.Str("path", r.URL.RequestURI()),
				log.Int("status", status),
				log.Dur("duration", time.Since(start)),
			}

			if internal.StatusClass(status) == "2xx" {
				reqLogger.Info("response sent", kv...)
			} else {
				reqLogger.Error(nil, "response sent", kv...)
			}
		})
	}
}
