package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"afi/internal/platform/config"
	"afi/internal/platform/metrics"
	"afi/internal/platform/middleware"
	"afi/pkg/platform/httputil"
)

type registrar interface {
	Register(r chi.Router)
}

type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

func newRouter(cfg config.Config, log *slog.Logger, m *metrics.Metrics, checks []healthCheck, apis ...registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log, m))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Get("/healthz", healthHandler(checks))
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		for _, api := range apis {
			api.Register(r)
		}
	})
	return r
}

// healthHandler reports 503 when any backing service fails its check.
func healthHandler(checks []healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.check(r.Context()); err != nil {
				deps[c.name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[c.name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "dependencies": deps})
	}
}
