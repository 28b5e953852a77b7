package residue

import (
	"context"

	"recircle/pkg/domain"
)

// Store persists residues.
type Store interface {
	Create(ctx context.Context, r Residue) error
	FindByID(ctx context.Context, id domain.ResidueID) (Residue, error)
	UpdateStatus(ctx context.Context, id domain.ResidueID, status Status) error
	ListByCitizen(ctx context.Context, citizenID domain.UserID) ([]Residue, error)
}
