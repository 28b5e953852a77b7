// Package audit records lifecycle and ledger events on a best-effort trail.
// Emitting is non-blocking and never fails the business operation; a worker
// drains events to the configured sinks.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies an audit event.
type Kind string

const (
	KindCollectionRequested  Kind = "collection.requested"
	KindCollectionTransition Kind = "collection.transition"
	KindPointsCredit         Kind = "points.credit"
	KindPointsDebit          Kind = "points.debit"
	KindRewardRedeemed       Kind = "reward.redeemed"
	KindUserRegistered       Kind = "user.registered"
)

// Event is one audit trail entry. UserID is carried as a string so an event
// can still be recorded when it concerns no particular user.
type Event struct {
	ID       uuid.UUID `json:"id"`
	Kind     Kind      `json:"kind"`
	UserID   string    `json:"user_id,omitempty"`
	Entity   string    `json:"entity"`
	EntityID string    `json:"entity_id"`
	Detail   string    `json:"detail"`
	Device   string    `json:"device,omitempty"`
	At       time.Time `json:"at"`
}
