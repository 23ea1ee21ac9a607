package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"afi/internal/dashboard/service"
	dErrors "afi/pkg/domain-errors"
	"afi/pkg/platform/httputil"
	"afi/pkg/requestcontext"
)

// Service defines the dashboard views served over HTTP.
type Service interface {
	Overview(ctx context.Context) (*service.Overview, error)
	States(ctx context.Context) (*service.StatesView, error)
	Typologies(ctx context.Context) (*service.TypologiesView, error)
	Hotspots(ctx context.Context, limit int) (*service.HotspotsView, error)
	Decomposition(ctx context.Context) (*service.DecompositionView, error)
	Matrix(ctx context.Context) (*service.MatrixView, error)
}

// Handler serves the read-only dashboard endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a dashboard Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register registers the dashboard routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/overview", h.handleOverview)
	r.Get("/states", h.handleStates)
	r.Get("/typologies", h.handleTypologies)
	r.Get("/hotspots", h.handleHotspots)
	r.Get("/decomposition", h.handleDecomposition)
	r.Get("/matrix", h.handleMatrix)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	respond(h, w, r, "overview", h.service.Overview)
}

func (h *Handler) handleStates(w http.ResponseWriter, r *http.Request) {
	respond(h, w, r, "states", h.service.States)
}

func (h *Handler) handleTypologies(w http.ResponseWriter, r *http.Request) {
	respond(h, w, r, "typologies", h.service.Typologies)
}

func (h *Handler) handleDecomposition(w http.ResponseWriter, r *http.Request) {
	respond(h, w, r, "decomposition", h.service.Decomposition)
}

func (h *Handler) handleMatrix(w http.ResponseWriter, r *http.Request) {
	respond(h, w, r, "matrix", h.service.Matrix)
}

// handleHotspots accepts an optional ?limit= in 1..50.
func (h *Handler) handleHotspots(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.logger.WarnContext(r.Context(), "invalid hotspot limit",
				"request_id", requestcontext.RequestID(r.Context()),
				"limit", raw,
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	respond(h, w, r, "hotspots", func(ctx context.Context) (*service.HotspotsView, error) {
		return h.service.Hotspots(ctx, limit)
	})
}

func respond[T any](h *Handler, w http.ResponseWriter, r *http.Request, view string, load func(context.Context) (*T, error)) {
	ctx := r.Context()
	result, err := load(ctx)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to compute dashboard view",
				"request_id", requestcontext.RequestID(ctx),
				"view", view,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
