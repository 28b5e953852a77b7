// Package reward holds the redeemable catalog and the redemption records.
// The only interesting rule lives in the ledger: a redemption debit may
// never drive a balance negative.
package reward

import (
	"time"

	"recircle/pkg/domain"
)

// Reward is a catalog entry.
type Reward struct {
	ID             domain.RewardID `json:"id"`
	Name           string          `json:"name"`
	PointsRequired int             `json:"points_required"`
}

// Redemption records one user redeeming one reward.
type Redemption struct {
	ID         domain.RedemptionID
	UserID     domain.UserID
	RewardID   domain.RewardID
	RedeemedAt time.Time
}
