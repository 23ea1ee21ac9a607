// Package cli implements afictl, the operator CLI for the AFI dataset.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"afi/internal/dataset/cache"
	"afi/internal/dataset/events"
	"afi/internal/dataset/ingest"
	"afi/internal/dataset/models"
	"afi/internal/dataset/store"
	"afi/internal/platform/config"
	"afi/internal/platform/logger"
	"afi/internal/platform/postgres"
	"afi/internal/platform/redis"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // ingestion or validation failed
	ExitCommandError = 2 // bad flags, unreachable backing services
)

// ExitError carries a process exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the exit code from err. Plain errors map to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Store is the full record store contract the CLI drives.
type Store interface {
	ingest.Store
	Query(ctx context.Context) ([]models.Record, error)
}

// RootOptions holds global flags and the backing-service factories.
type RootOptions struct {
	Format string
	Config config.Config

	openStore    func(ctx context.Context, cfg config.DatabaseConfig) (storeHandle, error)
	openNotifier func(ctx context.Context, cfg config.Config, log *slog.Logger) (events.Notifier, func(), error)
	logger       func(w io.Writer) *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates afictl configured from the environment.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{
		Config:       config.FromEnv(),
		openStore:    openStore,
		openNotifier: openNotifier,
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	if opts.logger == nil {
		level := opts.Config.LogLevel
		opts.logger = func(w io.Writer) *slog.Logger { return logger.NewWithWriter(w, level) }
	}

	cmd := &cobra.Command{
		Use:   "afictl",
		Short: "afictl - AFI dataset operations",
		Long:  "Operate the Aadhaar Friction Index dataset: replace it from CSV, summarise it, mint operator tokens.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)}
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newIngestCommand(opts))
	cmd.AddCommand(newSummaryCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))
	return cmd
}

// storeHandle is an opened store plus its release function.
type storeHandle struct {
	store Store
	close func()
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (storeHandle, error) {
	if cfg.URL == "" {
		return storeHandle{}, &ExitError{Code: ExitCommandError, Message: "DATABASE_URL is required"}
	}
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return storeHandle{}, &ExitError{Code: ExitCommandError, Message: "connect to postgres", Err: err}
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return storeHandle{}, &ExitError{Code: ExitCommandError, Message: "migrate schema", Err: err}
	}
	return storeHandle{store: store.NewPostgresStore(db), close: func() { _ = db.Close() }}, nil
}

// openNotifier mirrors the server: invalidate the shared cache, then publish.
func openNotifier(ctx context.Context, cfg config.Config, log *slog.Logger) (events.Notifier, func(), error) {
	var (
		fanout  events.Fanout
		closers []func()
	)
	release := func() {
		for _, c := range closers {
			c()
		}
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, release, &ExitError{Code: ExitCommandError, Message: "connect to redis", Err: err}
	}
	if client != nil {
		closers = append(closers, func() { _ = client.Close() })
		fanout = append(fanout, events.NewCacheInvalidator(cache.NewRedisCache(client.Client, cfg.Dashboard.CacheTTL), log))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			release()
			return nil, func() {}, &ExitError{Code: ExitCommandError, Message: "connect to kafka", Err: err}
		}
		closers = append(closers, publisher.Close)
		fanout = append(fanout, publisher)
	}
	return fanout, release, nil
}
