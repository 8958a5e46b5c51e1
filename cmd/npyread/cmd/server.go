package cmd

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// newMetricsRouter exposes reg at path plus a liveness probe.
func newMetricsRouter(path string, reg *prometheus.Registry) http.Handler {
	if path == "" {
		path = "/metrics"
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func newMetricsServer(addr, path string, reg *prometheus.Registry) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           newMetricsRouter(path, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
