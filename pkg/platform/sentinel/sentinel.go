package sentinel

import "errors"

// Sentinel errors for store-level facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors without
// knowing which backing implementation they talk to.
//
// These represent factual states about rows, not validation failures:
// - ErrNotFound: row does not exist
// - ErrConflict: a uniqueness or guarded-update conflict (lost a race)
// - ErrInvalidState: row is in the wrong state for the requested mutation
// - ErrInsufficientBalance: a guarded decrement found too few points
// - ErrUnavailable: backing store temporarily unreachable
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidState        = errors.New("invalid state")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnavailable         = errors.New("unavailable")
)
