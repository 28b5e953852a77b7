// Package profile owns the per-user role and running point balance. The
// balance is only ever mutated through the ledger service, which pairs every
// change with a transaction row.
package profile

import "recircle/pkg/domain"

// Profile is a user's role and current point balance.
type Profile struct {
	UserID domain.UserID
	Role   domain.Role
	Points int
}
