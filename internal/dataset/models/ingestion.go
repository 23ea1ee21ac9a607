package models

import "time"

// IngestState is a step of the bulk replacement state machine:
// Idle → Validating → Deleting → Inserting → Complete | Failed.
type IngestState string

const (
	IngestIdle       IngestState = "idle"
	IngestValidating IngestState = "validating"
	IngestDeleting   IngestState = "deleting"
	IngestInserting  IngestState = "inserting"
	IngestComplete   IngestState = "complete"
	IngestFailed     IngestState = "failed"
)

// Terminal reports whether no further transitions follow s.
func (s IngestState) Terminal() bool {
	return s == IngestComplete || s == IngestFailed
}

// Phase names the store mutation a failure happened in.
type Phase string

const (
	PhaseDelete Phase = "delete"
	PhaseInsert Phase = "insert"
)

// IngestResult is the terminal outcome of a successful replacement.
type IngestResult struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// ReplacementEvent announces that the stored dataset changed because a
// replacement ran at least its delete phase.
type ReplacementEvent struct {
	JobID      string    `json:"job_id,omitempty"`
	Success    bool      `json:"success"`
	Count      int       `json:"count"`
	FailedIn   Phase     `json:"failed_in,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
