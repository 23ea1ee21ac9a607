package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"afi/internal/dataset/ingest"
	"afi/internal/dataset/models"
)

// IngestResult is printed after an ingest run.
type IngestResult struct {
	DryRun  bool   `json:"dry_run"`
	Rows    int    `json:"rows"`
	States  int    `json:"states"`
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

func newIngestCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Replace the dataset from a CSV file",
		Long: `Validate a CSV export of district AFI observations and replace the whole
stored dataset with it.

The replacement deletes every stored record first. A failure after that point
leaves the store partially populated; rerun the command to recover.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, rootOpts, file, dryRun)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to ingest (- for stdin)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate only, do not touch the store")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runIngest(cmd *cobra.Command, opts *RootOptions, file string, dryRun bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := opts.logger(cmd.ErrOrStderr())

	in, closeIn, err := openInput(cmd, file)
	if err != nil {
		return err
	}
	defer closeIn()

	if dryRun {
		records, err := ingest.Parse(in)
		if err != nil {
			return &ExitError{Code: ExitFailure, Message: "validation failed", Err: err}
		}
		return printIngest(out, opts.Format, IngestResult{DryRun: true, Rows: len(records), States: distinctStates(records)})
	}

	handle, err := opts.openStore(ctx, opts.Config.Database)
	if err != nil {
		return err
	}
	defer handle.close()

	notifier, release, err := opts.openNotifier(ctx, opts.Config, log)
	if err != nil {
		return err
	}
	defer release()

	pipeline := ingest.NewPipeline(handle.store,
		ingest.WithBatchSize(opts.Config.Ingest.BatchSize),
		ingest.WithWindowSize(opts.Config.Ingest.WindowSize),
		ingest.WithLogger(log),
	)
	var progress ingest.Progress
	if opts.Format != "json" {
		progress = newTextProgress(out)
	}
	res, runErr := pipeline.Ingest(ctx, in, progress)

	var storeErr *ingest.StoreError
	if runErr != nil && !errors.As(runErr, &storeErr) {
		return &ExitError{Code: ExitFailure, Message: "validation failed", Err: runErr}
	}

	if ingest.DatasetTouched(runErr) && notifier != nil {
		event := models.ReplacementEvent{Success: runErr == nil, Count: res.Count, OccurredAt: time.Now()}
		if runErr != nil {
			event.FailedIn = models.PhaseInsert
		}
		if err := notifier.DatasetReplaced(ctx, event); err != nil {
			log.WarnContext(ctx, "dataset replacement notification failed", "error", err)
		}
	}

	result := IngestResult{Success: runErr == nil, Rows: res.Count, Count: res.Count}
	if runErr != nil {
		result.Error = runErr.Error()
	}
	if err := printIngest(out, opts.Format, result); err != nil {
		return err
	}
	if runErr != nil {
		return &ExitError{Code: ExitFailure, Message: "replacement failed", Err: runErr}
	}
	return nil
}

func openInput(cmd *cobra.Command, file string) (io.Reader, func(), error) {
	if file == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, &ExitError{Code: ExitCommandError, Message: "open input", Err: err}
	}
	return f, func() { _ = f.Close() }, nil
}

func distinctStates(records []models.Record) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.StateCanonical] = struct{}{}
	}
	return len(seen)
}

func printIngest(w io.Writer, format string, r IngestResult) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(r)
	}
	switch {
	case r.DryRun:
		_, err := fmt.Fprintf(w, "valid: %d rows across %d states (dry run, store untouched)\n", r.Rows, r.States)
		return err
	case r.Success:
		_, err := fmt.Fprintf(w, "replaced dataset with %d records\n", r.Count)
		return err
	default:
		_, err := fmt.Fprintf(w, "replacement failed: %s\n", r.Error)
		return err
	}
}

// textProgress prints state transitions, starting from idle, and progress
// percentages.
type textProgress struct {
	mu    sync.Mutex
	w     io.Writer
	state models.IngestState
}

func newTextProgress(w io.Writer) *textProgress {
	return &textProgress{w: w, state: models.IngestIdle}
}

func (p *textProgress) SetState(state models.IngestState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, "state: %s -> %s\n", p.state, state)
	p.state = state
}

func (p *textProgress) SetProgress(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, "progress: %d%%\n", percent)
}
