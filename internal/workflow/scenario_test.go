package workflow

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"recircle/internal/audit"
	"recircle/internal/collection"
	"recircle/internal/ledger"
	"recircle/internal/profile"
	"recircle/internal/residue"
	"recircle/pkg/domain"
	"recircle/pkg/platform/tx"
	"recircle/pkg/testutil"
)

// TestRecyclingScenario walks one residue through the whole lifecycle the way
// the three roles drive it in production.
func TestRecyclingScenario(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.DiscardHandler)
	runner := tx.NewMemoryRunner()

	residues := residue.NewMemoryStore()
	collections := collection.NewMemoryStore()
	profiles := profile.NewMemoryStore()
	ledgerStore := ledger.NewMemoryStore()

	engine := collection.NewEngine(runner, collections, residues, nil, audit.NopPublisher{}, log)
	ledgerSvc := ledger.NewService(runner, profiles, ledgerStore, nil, audit.NopPublisher{}, log)
	svc := NewService(runner, residues, collections, engine, ledgerSvc,
		ledger.FlatAward{Points: 10}, audit.NopPublisher{}, log)

	citizen := domain.NewUserID()
	collector := domain.NewUserID()
	recycler := domain.NewUserID()
	require.NoError(t, profiles.Create(ctx, profile.Profile{UserID: citizen, Role: domain.RoleCitizen}))
	require.NoError(t, profiles.Create(ctx, profile.Profile{UserID: collector, Role: domain.RoleCollector}))
	require.NoError(t, profiles.Create(ctx, profile.Profile{UserID: recycler, Role: domain.RoleRecycler}))

	testutil.Given(t, "a citizen submitted a plastic residue", func(t *testing.T) {
		units := 3
		r, err := svc.SubmitResidue(ctx, citizen, SubmitInput{
			Category: "plastic",
			Units:    &units,
			Location: "12 Green St",
		})
		require.NoError(t, err)
		require.Equal(t, residue.StatusAwaitingRequest, r.Status)

		testutil.When(t, "a pickup is requested and the collector delivers it", func(t *testing.T) {
			c, err := svc.RequestPickup(ctx, citizen, r.ID)
			require.NoError(t, err)

			actor := collection.Actor{ID: collector, Role: domain.RoleCollector}
			for _, step := range []collection.Status{
				collection.StatusAssigned,
				collection.StatusEnRoute,
				collection.StatusCollected,
				collection.StatusDelivered,
			} {
				_, err = engine.Transition(ctx, c.ID, actor, step)
				require.NoError(t, err)
			}

			testutil.Then(t, "processing credits the citizen once", func(t *testing.T) {
				processed, err := svc.ProcessDelivered(ctx, recycler, c.ID)
				require.NoError(t, err)
				require.Equal(t, collection.StatusProcessed, processed.Status)

				balance, err := ledgerSvc.Balance(ctx, citizen)
				require.NoError(t, err)
				require.Equal(t, 10, balance)

				mirrored, err := residues.FindByID(ctx, r.ID)
				require.NoError(t, err)
				require.Equal(t, residue.StatusProcessed, mirrored.Status)
			})
		})
	})
}
