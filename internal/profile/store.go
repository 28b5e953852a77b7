package profile

import (
	"context"

	"recircle/pkg/domain"
)

// Store persists profiles. Balance mutations are in-place increments, never
// read-modify-write, so concurrent credits cannot lose updates.
type Store interface {
	// Create inserts a profile, returning sentinel.ErrConflict if the user
	// already has one.
	Create(ctx context.Context, p Profile) error
	FindByUser(ctx context.Context, userID domain.UserID) (Profile, error)
	// Increment adds delta points in place. delta must be positive.
	Increment(ctx context.Context, userID domain.UserID, delta int) error
	// DecrementIfAvailable subtracts amount only when the current balance
	// covers it, returning sentinel.ErrInsufficientBalance otherwise. The
	// check and the write are one atomic operation.
	DecrementIfAvailable(ctx context.Context, userID domain.UserID, amount int) error
}
