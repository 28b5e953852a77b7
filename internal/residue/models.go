// Package residue holds the citizen-submitted recyclable item record. A
// residue's status is never written by handlers; it mirrors the lifecycle of
// its collection and is only mutated by the transition engine and the
// workflow orchestrator.
package residue

import (
	"time"

	"github.com/shopspring/decimal"

	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
)

// Status is the persisted residue status code.
type Status string

const (
	// StatusAwaitingRequest: created, no collection requested yet.
	StatusAwaitingRequest Status = "awaiting_request"
	// StatusCollectionRequested: a collection exists and is not terminal.
	StatusCollectionRequested Status = "collection_requested"
	// StatusProcessed: the collection reached its processed terminal state.
	StatusProcessed Status = "processed"
)

// Residue is a physical item awaiting recycling.
type Residue struct {
	ID        domain.ResidueID
	CitizenID domain.UserID
	Category  string
	Weight    *decimal.Decimal
	Units     *int
	Location  string
	Status    Status
	CreatedAt time.Time
}

// Validate enforces the submission invariant: a category, a location, and at
// least one positive quantity (weight or unit count).
func (r Residue) Validate() error {
	if r.Category == "" {
		return dErrors.New(dErrors.CodeBadRequest, "category is required")
	}
	if r.Location == "" {
		return dErrors.New(dErrors.CodeBadRequest, "location is required")
	}
	hasWeight := r.Weight != nil && r.Weight.IsPositive()
	hasUnits := r.Units != nil && *r.Units > 0
	if r.Weight != nil && !r.Weight.IsPositive() {
		return dErrors.New(dErrors.CodeBadRequest, "weight must be positive")
	}
	if r.Units != nil && *r.Units <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "units must be positive")
	}
	if !hasWeight && !hasUnits {
		return dErrors.New(dErrors.CodeBadRequest, "a positive weight or unit count is required")
	}
	return nil
}
