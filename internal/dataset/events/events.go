// Package events fans dataset replacement notices out to the record cache
// and to Kafka.
package events

import (
	"context"
	"errors"
	"log/slog"

	"afi/internal/dataset/models"
)

// Notifier reacts to a replacement that reached the store.
type Notifier interface {
	DatasetReplaced(ctx context.Context, event models.ReplacementEvent) error
}

// Invalidator drops cached records.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// CacheInvalidator drops the record cache on every replacement.
type CacheInvalidator struct {
	cache  Invalidator
	logger *slog.Logger
}

// NewCacheInvalidator wraps cache as a Notifier.
func NewCacheInvalidator(cache Invalidator, logger *slog.Logger) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, logger: logger}
}

func (c *CacheInvalidator) DatasetReplaced(ctx context.Context, event models.ReplacementEvent) error {
	if err := c.cache.Invalidate(ctx); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "record cache invalidated",
		"job_id", event.JobID,
		"success", event.Success,
	)
	return nil
}

// Fanout delivers each event to every notifier in order. All notifiers run
// even when an earlier one fails.
type Fanout []Notifier

func (f Fanout) DatasetReplaced(ctx context.Context, event models.ReplacementEvent) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.DatasetReplaced(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
