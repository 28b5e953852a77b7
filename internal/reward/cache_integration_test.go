//go:build integration

package reward_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"recircle/internal/audit"
	"recircle/internal/ledger"
	"recircle/internal/profile"
	"recircle/internal/reward"
	"recircle/pkg/domain"
	"recircle/pkg/platform/tx"
	"recircle/pkg/testutil/containers"
)

type CatalogCacheSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	store   *reward.MemoryStore
	cache   *reward.CatalogCache
	service *reward.Service
}

func TestCatalogCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CatalogCacheSuite))
}

func (s *CatalogCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *CatalogCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))

	log := slog.New(slog.DiscardHandler)
	runner := tx.NewMemoryRunner()
	s.store = reward.NewMemoryStore()
	s.cache = reward.NewCatalogCache(s.redis.Client, time.Minute, log)
	ledgerSvc := ledger.NewService(runner, profile.NewMemoryStore(), ledger.NewMemoryStore(),
		nil, audit.NopPublisher{}, log)
	s.service = reward.NewService(runner, s.store, s.cache, ledgerSvc, audit.NopPublisher{}, log)
}

func (s *CatalogCacheSuite) TestReadThrough() {
	ctx := context.Background()
	s.Require().NoError(s.store.UpsertReward(ctx,
		reward.Reward{ID: domain.NewRewardID(), Name: "tote bag", PointsRequired: 30}))

	// First list populates the cache.
	rewards, err := s.service.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(rewards, 1)

	cached, ok := s.cache.Get(ctx)
	s.Require().True(ok)
	s.Equal(rewards, cached)

	// A direct store write the cache doesn't know about: the stale list is
	// served until the TTL or an invalidation.
	s.Require().NoError(s.store.UpsertReward(ctx,
		reward.Reward{ID: domain.NewRewardID(), Name: "mug", PointsRequired: 15}))
	rewards, err = s.service.List(ctx)
	s.Require().NoError(err)
	s.Len(rewards, 1)
}

func (s *CatalogCacheSuite) TestUpsertInvalidates() {
	ctx := context.Background()
	s.Require().NoError(s.service.Upsert(ctx, reward.Reward{Name: "tote bag", PointsRequired: 30}))

	rewards, err := s.service.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(rewards, 1)

	s.Require().NoError(s.service.Upsert(ctx, reward.Reward{Name: "mug", PointsRequired: 15}))

	// The admin upsert dropped the cached catalog, so the next list sees
	// both entries.
	rewards, err = s.service.List(ctx)
	s.Require().NoError(err)
	s.Len(rewards, 2)
}

func (s *CatalogCacheSuite) TestCorruptCacheEntryFallsBack() {
	ctx := context.Background()
	s.Require().NoError(s.store.UpsertReward(ctx,
		reward.Reward{ID: domain.NewRewardID(), Name: "tote bag", PointsRequired: 30}))

	s.Require().NoError(s.redis.Client.Set(ctx, "recircle:rewards:catalog", "{not json", time.Minute).Err())

	rewards, err := s.service.List(ctx)
	s.Require().NoError(err)
	s.Len(rewards, 1, "corrupt cache entries are ignored, not fatal")
}
