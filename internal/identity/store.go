package identity

import (
	"context"

	"recircle/pkg/domain"
)

// Store persists user accounts.
type Store interface {
	// Create inserts a user, returning sentinel.ErrConflict when the
	// username is taken.
	Create(ctx context.Context, u User) error
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByID(ctx context.Context, id domain.UserID) (User, error)
}
