package reward

import (
	"context"

	"recircle/pkg/domain"
)

// Store persists the reward catalog and redemption records.
type Store interface {
	ListRewards(ctx context.Context) ([]Reward, error)
	FindReward(ctx context.Context, id domain.RewardID) (Reward, error)
	// UpsertReward creates or replaces a catalog entry (admin seeding).
	UpsertReward(ctx context.Context, r Reward) error
	CreateRedemption(ctx context.Context, r Redemption) error
	ListRedemptionsByUser(ctx context.Context, userID domain.UserID) ([]Redemption, error)
}
