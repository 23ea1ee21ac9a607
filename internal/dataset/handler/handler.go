package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"afi/internal/dataset/ingest"
	"afi/internal/dataset/models"
	"afi/internal/platform/middleware"
	dErrors "afi/pkg/domain-errors"
	"afi/pkg/platform/httputil"
	"afi/pkg/requestcontext"
)

const (
	maxUploadBytes     = 64 << 20
	maxMultipartMemory = 8 << 20
	uploadField        = "file"
)

// Jobs runs and reports asynchronous dataset replacements.
type Jobs interface {
	Start(ctx context.Context, records []models.Record) (ingest.Job, error)
	Get(id string) (ingest.Job, error)
}

// Handler serves the dataset upload and job status endpoints.
type Handler struct {
	jobs      Jobs
	validator middleware.TokenValidator
	logger    *slog.Logger
}

// New creates a dataset Handler.
func New(jobs Jobs, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{jobs: jobs, validator: validator, logger: logger}
}

// Register registers the operator-only dataset routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Post("/dataset", h.handleUpload)
		r.Get("/dataset/jobs/{id}", h.handleGetJob)
	})
}

// UploadResponse acknowledges an accepted replacement.
type UploadResponse struct {
	JobID    string             `json:"job_id"`
	State    models.IngestState `json:"state"`
	RowCount int                `json:"row_count"`
}

// handleUpload validates the CSV synchronously, then starts the replacement
// in the background. Invalid input never touches the store.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	body, closeBody, err := h.uploadBody(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid dataset upload",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	defer closeBody()

	records, err := ingest.Parse(body)
	if err != nil {
		h.logger.WarnContext(ctx, "dataset validation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, translateParseError(err))
		return
	}

	job, err := h.jobs.Start(ctx, records)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			h.logger.WarnContext(ctx, "dataset upload rejected, job already running",
				"request_id", requestID,
			)
		} else {
			h.logger.ErrorContext(ctx, "failed to start ingestion job",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "dataset upload accepted",
		"request_id", requestID,
		"subject", requestcontext.Subject(ctx),
		"job_id", job.ID,
		"row_count", job.RowCount,
	)
	w.Header().Set("Location", "/api/v1/dataset/jobs/"+job.ID)
	httputil.WriteJSON(w, http.StatusAccepted, UploadResponse{
		JobID:    job.ID,
		State:    job.State,
		RowCount: job.RowCount,
	})
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, job)
}

// uploadBody accepts a raw text/csv body or a multipart form with a file field.
func (h *Handler) uploadBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	noop := func() {}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return r.Body, noop, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, noop, dErrors.New(dErrors.CodeBadRequest, "invalid Content-Type header")
	}

	switch mediaType {
	case "text/csv", "application/csv", "text/plain", "application/octet-stream":
		return r.Body, noop, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, noop, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart body")
		}
		file, _, err := r.FormFile(uploadField)
		if err != nil {
			return nil, noop, dErrors.Wrap(err, dErrors.CodeBadRequest, `multipart field "file" is required`)
		}
		return file, func() { _ = file.Close() }, nil
	default:
		return nil, noop, dErrors.New(dErrors.CodeBadRequest, "unsupported content type "+mediaType)
	}
}

func translateParseError(err error) error {
	var missing *ingest.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		return dErrors.Wrap(err, dErrors.CodeValidation, missing.Error())
	case errors.Is(err, ingest.ErrEmptyDataset):
		return dErrors.Wrap(err, dErrors.CodeValidation, "dataset contains no valid rows")
	default:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed CSV")
	}
}
