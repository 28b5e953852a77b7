// Package ledger is the single authoritative path for mutating a profile's
// point balance. Every balance change is paired with an immutable transaction
// row in the same unit of work, so for every user the balance always equals
// the sum of their transaction deltas.
package ledger

import (
	"time"

	"recircle/pkg/domain"
)

// Transaction is an immutable ledger entry. Delta is positive for credits
// and negative for debits.
type Transaction struct {
	ID          int64
	UserID      domain.UserID
	Delta       int
	Description string
	CreatedAt   time.Time
}
