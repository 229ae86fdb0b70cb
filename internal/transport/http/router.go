// Package http assembles the service's HTTP surface: the middleware chain,
// the administrative API behind JWT auth, and the operational endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	clearancehandler "procura/internal/clearance/handler"
	exclusionhandler "procura/internal/exclusion/handler"
	"procura/internal/platform/metrics"
	"procura/internal/platform/middleware"
	providerhandler "procura/internal/provider/handler"
	referencehandler "procura/internal/reference/handler"
)

// Handlers carries the per-vertical handlers the router mounts.
type Handlers struct {
	Clearance *clearancehandler.Handler
	Exclusion *exclusionhandler.Handler
	Provider  *providerhandler.Handler
	Reference *referencehandler.Handler
}

// Options tunes the router.
type Options struct {
	AdminJWTKey    string
	RequestTimeout time.Duration
	// Metrics feeds the request-duration histogram; nil disables it.
	Metrics *metrics.Metrics
	// Health reports readiness of the backing stores; nil means always ready.
	Health func() error
}

// NewRouter builds the full route tree. Administrative mutations live under
// /admin and require a bearer token; reference lookups and the operational
// endpoints are open.
func NewRouter(h Handlers, logger *slog.Logger, opts Options) chi.Router {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics.RequestDuration))
	}
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/healthz", healthHandler(opts.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if h.Reference != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)
			h.Reference.Register(r)
		})
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.AdminAuth(opts.AdminJWTKey, logger))
		if h.Provider != nil {
			h.Provider.Register(r)
		}
		if h.Clearance != nil {
			h.Clearance.Register(r)
		}
		if h.Exclusion != nil {
			h.Exclusion.Register(r)
		}
	})

	return r
}

func healthHandler(health func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
