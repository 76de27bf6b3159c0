package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/red2n/opentele/core/errors"
	"github.com/red2n/opentele/core/log"
)

// HealthChecker reports dependency health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// OpsOptions configures the operational router.
type OpsOptions struct {
	Logger  log.Logger
	Metrics http.Handler  // Served at /metrics when set
	Health  HealthChecker // Checked at /healthz when set
}

// NewOpsRouter serves /metrics and /healthz.
func NewOpsRouter(opts OpsOptions) chi.Router {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if opts.Health != nil {
			if err := opts.Health.Ping(req.Context()); err != nil {
				err = errors.Wrap(errors.CodeUnavailable, "health check", err)
				opts.Logger.Warn("health check failed", log.Str("error", err.Error()))
				_ = WriteCodedError(w, err)
				return
			}
		}
		_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	notFound := NotFoundHandler(opts.Logger)
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}
