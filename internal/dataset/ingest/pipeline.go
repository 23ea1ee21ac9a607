package ingest

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"afi/internal/dataset/metrics"
	"afi/internal/dataset/models"
)

const (
	DefaultBatchSize  = 1000
	DefaultWindowSize = 5

	// deletedProgress is reported once the delete phase succeeds.
	deletedProgress = 5
)

var tracer = otel.Tracer("afi.ingest")

// Store is the mutation side of the record store.
type Store interface {
	Delete(ctx context.Context, filter models.Filter) error
	Insert(ctx context.Context, batch []models.Record) error
}

// Progress receives state transitions and progress percentages.
type Progress interface {
	SetState(state models.IngestState)
	SetProgress(percent int)
}

type discardProgress struct{}

func (discardProgress) SetState(models.IngestState) {}
func (discardProgress) SetProgress(int)             {}

// Pipeline replaces the whole stored dataset: one delete-all followed by
// fixed-size insert batches dispatched concurrently in bounded windows.
type Pipeline struct {
	store      Store
	batchSize  int
	windowSize int
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBatchSize sets the number of records per insert call.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithWindowSize sets how many insert batches run concurrently.
func WithWindowSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.windowSize = n
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics sets the ingestion metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// NewPipeline creates a Pipeline over store.
func NewPipeline(store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:      store,
		batchSize:  DefaultBatchSize,
		windowSize: DefaultWindowSize,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest validates CSV from r and replaces the dataset with it. Validation
// failures leave the store untouched.
func (p *Pipeline) Ingest(ctx context.Context, r io.Reader, progress Progress) (models.IngestResult, error) {
	if progress == nil {
		progress = discardProgress{}
	}
	progress.SetState(models.IngestValidating)
	records, err := Parse(r)
	if err != nil {
		progress.SetState(models.IngestFailed)
		return models.IngestResult{}, err
	}
	return p.Replace(ctx, records, progress)
}

// Replace deletes every stored record and inserts records. Once started it
// ignores cancellation of ctx; it halts only on a store error or completion.
// A failed insert window is not rolled back. Reaching 100 percent and the
// terminal state is left to the caller.
func (p *Pipeline) Replace(ctx context.Context, records []models.Record, progress Progress) (models.IngestResult, error) {
	if progress == nil {
		progress = discardProgress{}
	}
	if len(records) == 0 {
		return models.IngestResult{}, ErrEmptyDataset
	}
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	ctx, span := tracer.Start(ctx, "ingest.replace", trace.WithAttributes(
		attribute.Int("rows", len(records)),
		attribute.Int("batch_size", p.batchSize),
		attribute.Int("window_size", p.windowSize),
	))
	defer span.End()

	fail := func(err *StoreError) (models.IngestResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.IncrementRun("failed")
		p.metrics.ObserveIngest(time.Since(start))
		p.logger.ErrorContext(ctx, "dataset replacement failed",
			"phase", err.Phase,
			"batch", err.Batch,
			"error", err.Err,
		)
		return models.IngestResult{}, err
	}

	progress.SetState(models.IngestDeleting)
	if err := p.store.Delete(ctx, models.AllRecords()); err != nil {
		return fail(&StoreError{Phase: models.PhaseDelete, Batch: -1, Err: err})
	}
	p.logger.InfoContext(ctx, "existing dataset deleted")
	progress.SetState(models.IngestInserting)
	progress.SetProgress(deletedProgress)

	batches := chunk(records, p.batchSize)
	for lo := 0; lo < len(batches); lo += p.windowSize {
		hi := min(lo+p.windowSize, len(batches))
		if err := p.insertWindow(ctx, batches, lo, hi); err != nil {
			return fail(err)
		}
		pct := windowProgress(hi, len(batches))
		progress.SetProgress(pct)
		p.logger.DebugContext(ctx, "insert window committed",
			"window", lo/p.windowSize,
			"batches", hi-lo,
			"progress", pct,
		)
	}

	elapsed := time.Since(start)
	span.SetStatus(codes.Ok, "")
	p.metrics.IncrementRun("complete")
	p.metrics.ObserveIngest(elapsed)
	p.logger.InfoContext(ctx, "dataset replaced",
		"count", len(records),
		"batches", len(batches),
		"duration_ms", elapsed.Milliseconds(),
	)
	return models.IngestResult{Success: true, Count: len(records)}, nil
}

// insertWindow runs batches[lo:hi] concurrently and waits for all of them.
// The lowest-indexed failure is reported.
func (p *Pipeline) insertWindow(ctx context.Context, batches [][]models.Record, lo, hi int) *StoreError {
	ctx, span := tracer.Start(ctx, "ingest.window", trace.WithAttributes(
		attribute.Int("first_batch", lo),
		attribute.Int("batches", hi-lo),
	))
	defer span.End()

	errs := make([]error, hi-lo)
	var g errgroup.Group
	for i := lo; i < hi; i++ {
		g.Go(func() error {
			err := p.store.Insert(ctx, batches[i])
			p.metrics.ObserveBatch(len(batches[i]), err)
			errs[i-lo] = err
			return err
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			span.RecordError(err)
			return &StoreError{Phase: models.PhaseInsert, Batch: lo + i, Err: err}
		}
	}
	return nil
}

func chunk(records []models.Record, size int) [][]models.Record {
	batches := make([][]models.Record, 0, (len(records)+size-1)/size)
	for lo := 0; lo < len(records); lo += size {
		batches = append(batches, records[lo:min(lo+size, len(records))])
	}
	return batches
}

// windowProgress maps completed batches onto 5..100.
func windowProgress(done, total int) int {
	return int(math.Round(float64(done)/float64(total)*95)) + deletedProgress
}
