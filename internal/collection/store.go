package collection

import (
	"context"

	"recircle/pkg/domain"
)

// Store persists collections. Update is guarded on the expected current
// status, so a writer that lost a race observes sentinel.ErrConflict instead
// of silently overwriting the winner's transition.
type Store interface {
	// Create inserts a collection, returning sentinel.ErrConflict when the
	// residue already has a live one. A cancelled collection does not count;
	// the citizen may request again.
	Create(ctx context.Context, c Collection) error
	// FindByID fetches a fresh row. Inside a unit of work the Postgres
	// implementation locks the row for the remainder of the transaction.
	FindByID(ctx context.Context, id domain.CollectionID) (Collection, error)
	// FindByResidue fetches the residue's live collection.
	FindByResidue(ctx context.Context, residueID domain.ResidueID) (Collection, error)
	// Update writes status, collector, and timestamps, guarded on the row
	// still being in status from.
	Update(ctx context.Context, c Collection, from Status) error
	ListByStatus(ctx context.Context, status Status) ([]Collection, error)
	ListByCollector(ctx context.Context, collectorID domain.UserID) ([]Collection, error)
}
