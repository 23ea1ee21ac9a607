package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afi/internal/platform/config"
	"afi/pkg/testutil"
)

type pingAPI struct{}

func (pingAPI) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func testRouter(checks ...healthCheck) http.Handler {
	cfg := config.Config{Server: config.Server{RequestTimeout: time.Second}}
	return newRouter(cfg, slog.New(slog.DiscardHandler), nil, checks, pingAPI{})
}

func TestHealthz(t *testing.T) {
	t.Run("all dependencies healthy", func(t *testing.T) {
		router := testRouter(healthCheck{name: "postgres", check: func(context.Context) error { return nil }})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var body struct {
			Status       string            `json:"status"`
			Dependencies map[string]string `json:"dependencies"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, map[string]string{"postgres": "ok"}, body.Dependencies)
	})

	t.Run("failing dependency degrades", func(t *testing.T) {
		router := testRouter(
			healthCheck{name: "postgres", check: func(context.Context) error { return nil }},
			healthCheck{name: "redis", check: func(context.Context) error { return errors.New("connection refused") }},
		)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		assert.Contains(t, rr.Body.String(), "degraded")
		assert.Contains(t, rr.Body.String(), "connection refused")
	})
}

func TestRouterMountsAPIs(t *testing.T) {
	router := testRouter()
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/v1/ping"))
	testutil.AssertStatus(t, rr, http.StatusNoContent)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}
