package workflow

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"recircle/internal/audit"
	"recircle/internal/collection"
	"recircle/internal/ledger"
	"recircle/internal/profile"
	"recircle/internal/residue"
	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
	"recircle/pkg/platform/tx"
)

// The workflow suite wires real in-memory stores, the real engine, and the
// real ledger. The composite operations cut across all of them, so mocking
// any one module would hide exactly the interactions worth testing.
type WorkflowSuite struct {
	suite.Suite
	residues    *residue.MemoryStore
	collections *collection.MemoryStore
	profiles    *profile.MemoryStore
	ledgerStore *ledger.MemoryStore
	ledgerSvc   *ledger.Service
	trail       *audit.MemoryStore
	service     *Service

	citizen   domain.UserID
	collector domain.UserID
	recycler  domain.UserID
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	log := slog.New(slog.DiscardHandler)
	runner := tx.NewMemoryRunner()

	s.residues = residue.NewMemoryStore()
	s.collections = collection.NewMemoryStore()
	s.profiles = profile.NewMemoryStore()
	s.ledgerStore = ledger.NewMemoryStore()
	s.trail = audit.NewMemoryStore()

	publisher := audit.NopPublisher{}
	engine := collection.NewEngine(runner, s.collections, s.residues, nil, publisher, log)
	s.ledgerSvc = ledger.NewService(runner, s.profiles, s.ledgerStore, nil, publisher, log)
	s.service = NewService(runner, s.residues, s.collections, engine, s.ledgerSvc,
		ledger.FlatAward{Points: 10}, publisher, log)

	ctx := context.Background()
	s.citizen = domain.NewUserID()
	s.collector = domain.NewUserID()
	s.recycler = domain.NewUserID()
	s.Require().NoError(s.profiles.Create(ctx, profile.Profile{UserID: s.citizen, Role: domain.RoleCitizen}))
	s.Require().NoError(s.profiles.Create(ctx, profile.Profile{UserID: s.collector, Role: domain.RoleCollector}))
	s.Require().NoError(s.profiles.Create(ctx, profile.Profile{UserID: s.recycler, Role: domain.RoleRecycler}))
}

func (s *WorkflowSuite) submit() residue.Residue {
	units := 4
	r, err := s.service.SubmitResidue(context.Background(), s.citizen, SubmitInput{
		Category: "plastic",
		Units:    &units,
		Location: "12 Green St",
	})
	s.Require().NoError(err)
	return r
}

// driveTo advances a freshly requested collection to the given status.
func (s *WorkflowSuite) driveTo(c collection.Collection, target collection.Status) collection.Collection {
	ctx := context.Background()
	engine := collection.NewEngine(tx.NewMemoryRunner(), s.collections, s.residues,
		nil, audit.NopPublisher{}, slog.New(slog.DiscardHandler))
	steps := map[collection.Status][]collection.Status{
		collection.StatusAssigned:  {collection.StatusAssigned},
		collection.StatusEnRoute:   {collection.StatusAssigned, collection.StatusEnRoute},
		collection.StatusCollected: {collection.StatusAssigned, collection.StatusEnRoute, collection.StatusCollected},
		collection.StatusDelivered: {collection.StatusAssigned, collection.StatusEnRoute, collection.StatusCollected, collection.StatusDelivered},
	}
	current := c
	for _, step := range steps[target] {
		var err error
		current, err = engine.Transition(ctx, c.ID, collection.Actor{ID: s.collector, Role: domain.RoleCollector}, step)
		s.Require().NoError(err)
	}
	return current
}

func (s *WorkflowSuite) TestSubmitResidue() {
	ctx := context.Background()

	s.Run("creates the residue awaiting a request", func() {
		r := s.submit()
		s.Equal(residue.StatusAwaitingRequest, r.Status)
		s.Equal(s.citizen, r.CitizenID)

		mine, err := s.service.CitizenResidues(ctx, s.citizen)
		s.Require().NoError(err)
		s.Len(mine, 1)
	})

	s.Run("rejects a residue without a quantity", func() {
		_, err := s.service.SubmitResidue(ctx, s.citizen, SubmitInput{
			Category: "plastic",
			Location: "12 Green St",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *WorkflowSuite) TestRequestPickup() {
	ctx := context.Background()

	s.Run("creates a requested collection and mirrors the residue", func() {
		r := s.submit()
		c, err := s.service.RequestPickup(ctx, s.citizen, r.ID)
		s.Require().NoError(err)
		s.Equal(collection.StatusRequested, c.Status)
		s.Equal(r.ID, c.ResidueID)
		s.Nil(c.CollectorID)

		updated, err := s.residues.FindByID(ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(residue.StatusCollectionRequested, updated.Status)

		available, err := s.service.AvailableCollections(ctx)
		s.Require().NoError(err)
		s.Len(available, 1)
	})

	s.Run("second request for the same residue is rejected", func() {
		r := s.submit()
		_, err := s.service.RequestPickup(ctx, s.citizen, r.ID)
		s.Require().NoError(err)

		_, err = s.service.RequestPickup(ctx, s.citizen, r.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRequested), "got %v", err)
	})

	s.Run("someone else's residue is forbidden", func() {
		r := s.submit()
		_, err := s.service.RequestPickup(ctx, domain.NewUserID(), r.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown residue is not found", func() {
		_, err := s.service.RequestPickup(ctx, s.citizen, domain.NewResidueID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *WorkflowSuite) TestProcessDelivered() {
	ctx := context.Background()

	s.Run("credits the citizen exactly once", func() {
		r := s.submit()
		c, err := s.service.RequestPickup(ctx, s.citizen, r.ID)
		s.Require().NoError(err)
		s.driveTo(c, collection.StatusDelivered)

		processed, err := s.service.ProcessDelivered(ctx, s.recycler, c.ID)
		s.Require().NoError(err)
		s.Equal(collection.StatusProcessed, processed.Status)
		s.NotNil(processed.ProcessedAt)

		balance, err := s.ledgerSvc.Balance(ctx, s.citizen)
		s.Require().NoError(err)
		s.Equal(10, balance)

		mirrored, err := s.residues.FindByID(ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(residue.StatusProcessed, mirrored.Status)

		// A second call is a no-op: same result, no second credit.
		again, err := s.service.ProcessDelivered(ctx, s.recycler, c.ID)
		s.Require().NoError(err)
		s.Equal(collection.StatusProcessed, again.Status)

		balance, err = s.ledgerSvc.Balance(ctx, s.citizen)
		s.Require().NoError(err)
		s.Equal(10, balance)

		history, err := s.ledgerSvc.History(ctx, s.citizen)
		s.Require().NoError(err)
		s.Require().Len(history, 1)
		s.Equal("plastic processed", history[0].Description)
	})

	s.Run("not yet delivered is rejected without a credit", func() {
		r := s.submit()
		c, err := s.service.RequestPickup(ctx, s.citizen, r.ID)
		s.Require().NoError(err)
		s.driveTo(c, collection.StatusCollected)

		balanceBefore, err := s.ledgerSvc.Balance(ctx, s.citizen)
		s.Require().NoError(err)

		_, err = s.service.ProcessDelivered(ctx, s.recycler, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotReady), "got %v", err)

		balanceAfter, err := s.ledgerSvc.Balance(ctx, s.citizen)
		s.Require().NoError(err)
		s.Equal(balanceBefore, balanceAfter)
	})

	s.Run("unknown collection is not found", func() {
		_, err := s.service.ProcessDelivered(ctx, s.recycler, domain.NewCollectionID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *WorkflowSuite) TestCancelledResidueCanBeRequestedAgain() {
	ctx := context.Background()
	r := s.submit()
	c, err := s.service.RequestPickup(ctx, s.citizen, r.ID)
	s.Require().NoError(err)
	s.driveTo(c, collection.StatusAssigned)

	engine := collection.NewEngine(tx.NewMemoryRunner(), s.collections, s.residues,
		nil, audit.NopPublisher{}, slog.New(slog.DiscardHandler))
	_, err = engine.Transition(ctx, c.ID,
		collection.Actor{ID: s.collector, Role: domain.RoleCollector}, collection.StatusCancelled)
	s.Require().NoError(err)

	second, err := s.service.RequestPickup(ctx, s.citizen, r.ID)
	s.Require().NoError(err)
	s.NotEqual(c.ID, second.ID)
	s.Equal(collection.StatusRequested, second.Status)
}
