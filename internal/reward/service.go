package reward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"recircle/internal/audit"
	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
	"recircle/pkg/platform/sentinel"
	"recircle/pkg/platform/tx"
)

// PointsLedger is the slice of the ledger the reward service needs: a debit
// that refuses to drive the balance negative.
type PointsLedger interface {
	Debit(ctx context.Context, userID domain.UserID, amount int, description string) error
}

// Service serves the catalog (cache first) and performs redemptions.
type Service struct {
	runner tx.Runner
	store  Store
	cache  *CatalogCache
	ledger PointsLedger
	audit  audit.Publisher
	logger *slog.Logger
}

func NewService(runner tx.Runner, store Store, cache *CatalogCache, ledger PointsLedger, publisher audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		runner: runner,
		store:  store,
		cache:  cache,
		ledger: ledger,
		audit:  publisher,
		logger: logger,
	}
}

// List returns the catalog, reading through the cache when one is configured.
func (s *Service) List(ctx context.Context) ([]Reward, error) {
	if rewards, ok := s.cache.Get(ctx); ok {
		return rewards, nil
	}
	rewards, err := s.store.ListRewards(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list rewards")
	}
	s.cache.Set(ctx, rewards)
	return rewards, nil
}

// Upsert creates or replaces a catalog entry and invalidates the cached
// catalog.
func (s *Service) Upsert(ctx context.Context, r Reward) error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "reward name is required")
	}
	if r.PointsRequired <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "points_required must be positive")
	}
	if r.ID.IsZero() {
		r.ID = domain.NewRewardID()
	}
	if err := s.store.UpsertReward(ctx, r); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "upsert reward")
	}
	s.cache.Invalidate(ctx)
	return nil
}

// Redeem debits the reward's cost from the user and records the redemption
// in the same unit of work. An insufficient balance aborts the whole thing;
// no redemption row is left behind.
func (s *Service) Redeem(ctx context.Context, userID domain.UserID, rewardID domain.RewardID) (Redemption, error) {
	var redemption Redemption
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		reward, err := s.store.FindReward(ctx, rewardID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "reward not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "find reward")
		}
		if err := s.ledger.Debit(ctx, userID, reward.PointsRequired, fmt.Sprintf("redeemed %s", reward.Name)); err != nil {
			return err
		}
		redemption = Redemption{
			ID:         domain.NewRedemptionID(),
			UserID:     userID,
			RewardID:   rewardID,
			RedeemedAt: time.Now().UTC(),
		}
		if err := s.store.CreateRedemption(ctx, redemption); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "create redemption")
		}
		return nil
	})
	if err != nil {
		return Redemption{}, err
	}
	s.audit.Emit(ctx, audit.Event{
		Kind:     audit.KindRewardRedeemed,
		UserID:   userID.String(),
		Entity:   "reward",
		EntityID: rewardID.String(),
		Detail:   fmt.Sprintf("redemption %s", redemption.ID),
	})
	s.logger.Info("reward redeemed", "user_id", userID, "reward_id", rewardID)
	return redemption, nil
}

// Redemptions lists the user's past redemptions, newest first.
func (s *Service) Redemptions(ctx context.Context, userID domain.UserID) ([]Redemption, error) {
	redemptions, err := s.store.ListRedemptionsByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list redemptions")
	}
	return redemptions, nil
}
