package ledger

import (
	"context"

	"recircle/pkg/domain"
)

// Store persists the append-only transaction log.
type Store interface {
	Append(ctx context.Context, t Transaction) error
	ListByUser(ctx context.Context, userID domain.UserID) ([]Transaction, error)
	// SumByUser returns the sum of all deltas for a user. It exists so the
	// balance consistency invariant stays cheap to verify.
	SumByUser(ctx context.Context, userID domain.UserID) (int, error)
}
