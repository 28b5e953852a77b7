// Package collection owns the pickup/processing lifecycle wrapping exactly
// one residue: the status enum, the allowed-transition table, and the engine
// that applies role-gated transitions.
package collection

import (
	"time"

	"recircle/pkg/domain"
)

// Status is the persisted collection status code.
type Status string

const (
	StatusRequested Status = "requested"
	StatusAssigned  Status = "assigned"
	StatusEnRoute   Status = "en_route"
	StatusCollected Status = "collected"
	StatusDelivered Status = "delivered"
	StatusProcessed Status = "processed"
	StatusCancelled Status = "cancelled"
)

// transitions is the allow-list of reachable statuses. Terminal statuses map
// to an empty set.
var transitions = map[Status][]Status{
	StatusRequested: {StatusAssigned},
	StatusAssigned:  {StatusEnRoute, StatusCancelled},
	StatusEnRoute:   {StatusCollected, StatusCancelled},
	StatusCollected: {StatusDelivered},
	StatusDelivered: {StatusProcessed},
	StatusProcessed: {},
	StatusCancelled: {},
}

// Valid reports whether s is a known status code.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s has no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusProcessed || s == StatusCancelled
}

// CanTransitionTo reports whether target is in the allowed set for s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Collection is the lifecycle record for one residue. CollectorID is nil
// until a collector claims the requested collection.
type Collection struct {
	ID          domain.CollectionID
	ResidueID   domain.ResidueID
	CollectorID *domain.UserID
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ProcessedAt *time.Time
}

// Actor is the authenticated user requesting a transition.
type Actor struct {
	ID   domain.UserID
	Role domain.Role
}
