package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"afi/internal/dataset/models"
	dErrors "afi/pkg/domain-errors"
	"afi/pkg/platform/sentinel"
)

// maxFinishedJobs bounds how many terminal jobs stay queryable.
const maxFinishedJobs = 50

// Replacer runs one whole-dataset replacement.
type Replacer interface {
	Replace(ctx context.Context, records []models.Record, progress Progress) (models.IngestResult, error)
}

// Notifier is told about every replacement that reached the store.
type Notifier interface {
	DatasetReplaced(ctx context.Context, event models.ReplacementEvent) error
}

// Job is a snapshot of one asynchronous replacement.
type Job struct {
	ID         string             `json:"id"`
	State      models.IngestState `json:"state"`
	Progress   int                `json:"progress"`
	RowCount   int                `json:"row_count"`
	Count      int                `json:"count"`
	Error      string             `json:"error,omitempty"`
	Phase      models.Phase       `json:"phase,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}

// Tracker runs replacements in the background, one at a time, and keeps
// their progress queryable.
type Tracker struct {
	replacer Replacer
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	jobs     map[string]*Job
	finished []string
	active   string
	wg       sync.WaitGroup
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithNotifier sets who is told after the delete phase has run.
func WithNotifier(n Notifier) TrackerOption {
	return func(t *Tracker) {
		t.notifier = n
	}
}

// WithTrackerLogger sets the tracker logger.
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates a Tracker around replacer.
func NewTracker(replacer Replacer, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		replacer: replacer,
		logger:   slog.Default(),
		now:      time.Now,
		jobs:     make(map[string]*Job),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start launches a replacement of the dataset with records. It fails with a
// conflict while another job is active.
func (t *Tracker) Start(ctx context.Context, records []models.Record) (Job, error) {
	if len(records) == 0 {
		return Job{}, ErrEmptyDataset
	}

	t.mu.Lock()
	if t.active != "" {
		active := t.active
		t.mu.Unlock()
		return Job{}, dErrors.Wrap(sentinel.ErrConflict, dErrors.CodeConflict, "ingestion job "+active+" is still running")
	}
	job := &Job{
		ID:        uuid.NewString(),
		State:     models.IngestDeleting,
		RowCount:  len(records),
		StartedAt: t.now(),
	}
	t.jobs[job.ID] = job
	t.active = job.ID
	snapshot := *job
	t.wg.Add(1)
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "ingestion job started",
		"job_id", job.ID,
		"row_count", job.RowCount,
	)
	go t.run(context.WithoutCancel(ctx), job.ID, records)
	return snapshot, nil
}

// Get returns a snapshot of the job with the given id.
func (t *Tracker) Get(id string) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok {
		return Job{}, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "ingestion job not found")
	}
	return *job, nil
}

// Wait blocks until every started job has finished or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tracker) run(ctx context.Context, id string, records []models.Record) {
	defer t.wg.Done()

	result, err := t.replacer.Replace(ctx, records, &jobProgress{t: t, id: id})

	// Notify before the job turns terminal: a job reported complete implies
	// the record cache is already invalidated.
	if DatasetTouched(err) && t.notifier != nil {
		event := models.ReplacementEvent{
			JobID:      id,
			Success:    err == nil,
			Count:      result.Count,
			OccurredAt: t.now(),
		}
		if err != nil {
			event.FailedIn = models.PhaseInsert
		}
		if nerr := t.notifier.DatasetReplaced(ctx, event); nerr != nil {
			t.logger.WarnContext(ctx, "dataset replacement notification failed",
				"job_id", id,
				"error", nerr,
			)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	job := t.jobs[id]
	finished := t.now()
	job.FinishedAt = &finished
	if err != nil {
		job.State = models.IngestFailed
		job.Progress = 0
		job.Error = err.Error()
		var se *StoreError
		if errors.As(err, &se) {
			job.Phase = se.Phase
		}
	} else {
		job.State = models.IngestComplete
		job.Progress = 100
		job.Count = result.Count
	}
	t.active = ""
	t.finished = append(t.finished, id)
	for len(t.finished) > maxFinishedJobs {
		delete(t.jobs, t.finished[0])
		t.finished = t.finished[1:]
	}
	t.logger.InfoContext(ctx, "ingestion job finished",
		"job_id", id,
		"state", job.State,
		"count", job.Count,
	)
}

type jobProgress struct {
	t  *Tracker
	id string
}

func (p *jobProgress) SetState(state models.IngestState) {
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	if job, ok := p.t.jobs[p.id]; ok && !job.State.Terminal() {
		job.State = state
	}
}

func (p *jobProgress) SetProgress(percent int) {
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	if job, ok := p.t.jobs[p.id]; ok && percent > job.Progress {
		job.Progress = percent
	}
}
