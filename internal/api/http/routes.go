package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the status server router: run progress, health and
// Prometheus metrics.
func NewRouter(provider StatusProvider, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	handler := NewStatusHandler(provider, logger)

	r.Get("/healthz", handler.Healthz)
	r.Get("/status", handler.GetStatus)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
