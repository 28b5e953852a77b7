// Package identity owns accounts and token issuing. Registering creates the
// user and their points profile in one unit of work; every other module
// trusts the role carried in the token.
package identity

import (
	"time"

	"recircle/pkg/domain"
)

// User is an account record. PasswordHash is a bcrypt hash and never leaves
// this package.
type User struct {
	ID           domain.UserID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
