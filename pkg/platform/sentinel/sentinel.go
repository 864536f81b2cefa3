package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and snapshot backends return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: record or persisted snapshot does not exist
//   - ErrConflict: a record with the same key already exists
//   - ErrInvalidState: record is in the wrong state for the requested transition
//   - ErrUnavailable: backend temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
