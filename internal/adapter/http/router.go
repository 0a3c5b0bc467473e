package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/ledgerviews/internal/adapter/http/handler"
	"github.com/iho/ledgerviews/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	JobHandler    *handler.JobHandler
	HealthHandler *handler.HealthHandler
	Logger        zerolog.Logger

	// Job submissions per second allowed per client; zero disables limiting.
	JobRateLimit float64
	JobRateBurst int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/jobs", func(r chi.Router) {
			if cfg.JobRateLimit > 0 {
				limiter := middleware.NewRateLimiter(cfg.JobRateLimit, cfg.JobRateBurst)
				r.Use(limiter.Limit)
			}

			r.Post("/", cfg.JobHandler.Run)
		})
	})

	return r
}
