package service

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"afi/internal/analytics"
	datasetMetrics "afi/internal/dataset/metrics"
	"afi/internal/dataset/mockdata"
	"afi/internal/dataset/models"
	dErrors "afi/pkg/domain-errors"
)

var tracer = otel.Tracer("afi.dashboard")

// RecordStore is the read side of the record store.
type RecordStore interface {
	Query(ctx context.Context) ([]models.Record, error)
}

// RecordCache holds the last store read. Set accepts records only while
// the generation taken before the read is still current.
type RecordCache interface {
	Get(ctx context.Context) ([]models.Record, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, generation int64, records []models.Record) (bool, error)
	Invalidate(ctx context.Context) error
}

// Source tells where a snapshot's records came from.
type Source string

const (
	SourceDatabase Source = "database"
	SourceMock     Source = "mock"
)

// Snapshot is the record set every view of one request is computed from.
type Snapshot struct {
	Records []models.Record
	Source  Source
}

// Service loads records and computes dashboard views.
type Service struct {
	store        RecordStore
	cache        RecordCache
	logger       *slog.Logger
	metrics      *datasetMetrics.Metrics
	mockFallback bool
	mockRecords  func() []models.Record
}

// Option configures a Service.
type Option func(*Service)

// WithCache puts cache in front of the store.
func WithCache(cache RecordCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets cache and source metrics.
func WithMetrics(m *datasetMetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMockFallback controls whether an empty store serves mock data.
func WithMockFallback(enabled bool) Option {
	return func(s *Service) {
		s.mockFallback = enabled
	}
}

// WithMockRecords replaces the generated mock dataset.
func WithMockRecords(records func() []models.Record) Option {
	return func(s *Service) {
		s.mockRecords = records
	}
}

// New creates a dashboard Service over store.
func New(store RecordStore, opts ...Option) *Service {
	s := &Service{
		store:        store,
		logger:       slog.Default(),
		mockFallback: true,
		mockRecords:  sync.OnceValue(mockdata.Records),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot reads records through the cache, falling back to the mock dataset
// when the store holds none. Cache failures degrade to a store read. Store
// failures are returned, never masked by mock data.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "dashboard.snapshot")
	defer span.End()

	records, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dataset")
	}

	snap := Snapshot{Records: records, Source: SourceDatabase}
	if len(records) == 0 && s.mockFallback {
		snap = Snapshot{Records: s.mockRecords(), Source: SourceMock}
	}
	span.SetAttributes(
		attribute.String("source", string(snap.Source)),
		attribute.Int("records", len(snap.Records)),
	)
	s.metrics.AddRecordsServed(string(snap.Source), len(snap.Records))
	return snap, nil
}

func (s *Service) load(ctx context.Context) ([]models.Record, error) {
	var (
		gen       int64
		cacheable bool
	)
	if s.cache != nil {
		records, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.metrics.IncrementCacheLookup("error")
			s.logger.WarnContext(ctx, "record cache read failed", "error", err)
		case ok:
			s.metrics.IncrementCacheLookup("hit")
			return records, nil
		default:
			s.metrics.IncrementCacheLookup("miss")
		}
		if gen, err = s.cache.Generation(ctx); err != nil {
			s.logger.WarnContext(ctx, "record cache generation read failed", "error", err)
		} else {
			cacheable = true
		}
	}

	records, err := s.store.Query(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "record store query failed", "error", err)
		return nil, err
	}

	if cacheable {
		stored, err := s.cache.Set(ctx, gen, records)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "record cache write failed", "error", err)
		case !stored:
			s.logger.InfoContext(ctx, "dataset replaced during read, result not cached", "records", len(records))
		}
	}
	return records, nil
}

// =============================================================================
// Views
// =============================================================================

// Overview is the national landing view.
type Overview struct {
	Source       Source                  `json:"source"`
	RecordCount  int                     `json:"recordCount"`
	Stats        analytics.NationalStats `json:"stats"`
	Distribution []analytics.Bucket      `json:"distribution"`
}

// Overview computes national statistics and the score histogram.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Source:       snap.Source,
		RecordCount:  len(snap.Records),
		Stats:        analytics.NationalStatistics(snap.Records),
		Distribution: analytics.AFIDistribution(snap.Records),
	}, nil
}

// StatesView ranks states by mean score.
type StatesView struct {
	Source Source                   `json:"source"`
	States []analytics.StateSummary `json:"states"`
}

func (s *Service) States(ctx context.Context) (*StatesView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &StatesView{Source: snap.Source, States: analytics.StateSummaries(snap.Records)}, nil
}

// TypologyEntry is one cluster label with its share of labelled records.
// Description is empty for labels outside the known set.
type TypologyEntry struct {
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	Share       float64 `json:"share"`
	Description string  `json:"description,omitempty"`
}

// TypologiesView lists cluster labels by frequency.
type TypologiesView struct {
	Source     Source          `json:"source"`
	Typologies []TypologyEntry `json:"typologies"`
}

func (s *Service) Typologies(ctx context.Context) (*TypologiesView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	summaries := analytics.TypologySummaries(snap.Records)
	var labelled int
	for _, t := range summaries {
		labelled += t.Count
	}
	entries := make([]TypologyEntry, 0, len(summaries))
	for _, t := range summaries {
		e := TypologyEntry{Name: t.Name, Count: t.Count}
		if labelled > 0 {
			e.Share = math.Round(float64(t.Count)/float64(labelled)*10000) / 100
		}
		if typ, ok := models.ParseTypology(t.Name); ok {
			e.Description = typ.Description()
		}
		entries = append(entries, e)
	}
	return &TypologiesView{Source: snap.Source, Typologies: entries}, nil
}

// HotspotEntry is a ranked district with its friction band.
type HotspotEntry struct {
	analytics.Hotspot
	FrictionLevel analytics.FrictionLevel `json:"frictionLevel"`
}

// HotspotsView ranks districts by mean score.
type HotspotsView struct {
	Source   Source         `json:"source"`
	Limit    int            `json:"limit"`
	Hotspots []HotspotEntry `json:"hotspots"`
}

// Hotspots returns the top limit districts. Zero means the default limit;
// limits outside 1..50 are rejected.
func (s *Service) Hotspots(ctx context.Context, limit int) (*HotspotsView, error) {
	if limit == 0 {
		limit = analytics.DefaultHotspotLimit
	}
	if limit < 1 || limit > analytics.MaxHotspotLimit {
		return nil, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 50")
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	hotspots := analytics.DistrictHotspots(snap.Records, limit)
	entries := make([]HotspotEntry, len(hotspots))
	for i, h := range hotspots {
		entries[i] = HotspotEntry{Hotspot: h, FrictionLevel: analytics.LevelOf(h.MeanAFI)}
	}
	return &HotspotsView{Source: snap.Source, Limit: limit, Hotspots: entries}, nil
}

// DecompositionView is the downsampled scatter projection.
type DecompositionView struct {
	Source Source                       `json:"source"`
	Points []analytics.DecompositionRow `json:"points"`
}

func (s *Service) Decomposition(ctx context.Context) (*DecompositionView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &DecompositionView{Source: snap.Source, Points: analytics.Decomposition(snap.Records)}, nil
}

// MatrixView is the state by typology count grid.
type MatrixView struct {
	Source     Source                `json:"source"`
	Typologies []string              `json:"typologies"`
	Rows       []analytics.MatrixRow `json:"rows"`
}

func (s *Service) Matrix(ctx context.Context) (*MatrixView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	columns := make([]string, 0, len(models.Typologies()))
	for _, t := range models.Typologies() {
		columns = append(columns, t.String())
	}
	return &MatrixView{Source: snap.Source, Typologies: columns, Rows: analytics.StateTypologyMatrix(snap.Records)}, nil
}
