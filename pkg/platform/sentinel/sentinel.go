package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches and trackers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: entity does not exist
// - ErrConflict: operation collides with one already in progress
// - ErrUnavailable: backing service temporarily unreachable
//
// Validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
