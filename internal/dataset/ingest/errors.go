package ingest

import (
	"errors"
	"fmt"
	"strings"

	"afi/internal/dataset/models"
)

// ErrEmptyDataset is returned when no row survives validation.
var ErrEmptyDataset = errors.New("dataset contains no valid rows")

// MissingColumnsError lists every required column absent from the header,
// in required-column order.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// ErrorDetails exposes the missing columns in HTTP error envelopes.
func (e *MissingColumnsError) ErrorDetails() any {
	return map[string][]string{"missing_columns": e.Columns}
}

// StoreError carries a store failure together with the phase it happened in.
// Batch is the zero-based insert batch index, or -1 for the delete phase.
type StoreError struct {
	Phase models.Phase
	Batch int
	Err   error
}

func (e *StoreError) Error() string {
	if e.Phase == models.PhaseDelete {
		return fmt.Sprintf("delete phase: %v", e.Err)
	}
	return fmt.Sprintf("insert phase (batch %d): %v", e.Batch, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// DatasetTouched reports whether a failed replacement already mutated the
// store, i.e. the delete phase completed before err occurred.
func DatasetTouched(err error) bool {
	if err == nil {
		return true
	}
	var se *StoreError
	return errors.As(err, &se) && se.Phase == models.PhaseInsert
}
