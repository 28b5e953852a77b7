package collection

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"recircle/internal/audit"
	"recircle/internal/residue"
	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
	"recircle/pkg/platform/tx"
)

type EngineSuite struct {
	suite.Suite
	collections *MemoryStore
	residues    *residue.MemoryStore
	engine      *Engine

	citizen   domain.UserID
	collector domain.UserID
	recycler  domain.UserID
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.collections = NewMemoryStore()
	s.residues = residue.NewMemoryStore()
	s.engine = NewEngine(tx.NewMemoryRunner(), s.collections, s.residues,
		nil, audit.NopPublisher{}, slog.New(slog.DiscardHandler))

	s.citizen = domain.NewUserID()
	s.collector = domain.NewUserID()
	s.recycler = domain.NewUserID()
}

// seed inserts a residue and a collection in the given status. A collector
// is bound for every status past requested.
func (s *EngineSuite) seed(status Status) Collection {
	r := residue.Residue{
		ID:        domain.NewResidueID(),
		CitizenID: s.citizen,
		Category:  "plastic",
		Location:  "12 Green St",
		Status:    residue.StatusCollectionRequested,
	}
	units := 3
	r.Units = &units
	s.Require().NoError(s.residues.Create(context.Background(), r))

	c := Collection{
		ID:        domain.NewCollectionID(),
		ResidueID: r.ID,
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if status != StatusRequested {
		collector := s.collector
		c.CollectorID = &collector
	}
	s.Require().NoError(s.collections.Create(context.Background(), c))
	return c
}

func (s *EngineSuite) asCollector() Actor { return Actor{ID: s.collector, Role: domain.RoleCollector} }
func (s *EngineSuite) asRecycler() Actor { return Actor{ID: s.recycler, Role: domain.RoleRecycler} }
func (s *EngineSuite) asCitizen() Actor  { return Actor{ID: s.citizen, Role: domain.RoleCitizen} }

func (s *EngineSuite) TestHappyPath() {
	ctx := context.Background()
	c := s.seed(StatusRequested)

	for _, step := range []struct {
		target Status
		actor  Actor
	}{
		{StatusAssigned, s.asCollector()},
		{StatusEnRoute, s.asCollector()},
		{StatusCollected, s.asCollector()},
		{StatusDelivered, s.asCollector()},
		{StatusProcessed, s.asRecycler()},
	} {
		updated, err := s.engine.Transition(ctx, c.ID, step.actor, step.target)
		s.Require().NoError(err, "transition to %s", step.target)
		s.Equal(step.target, updated.Status)
	}

	final, err := s.collections.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(StatusProcessed, final.Status)
	s.Require().NotNil(final.ProcessedAt)
	s.Require().NotNil(final.CollectorID)
	s.Equal(s.collector, *final.CollectorID)

	r, err := s.residues.FindByID(ctx, c.ResidueID)
	s.Require().NoError(err)
	s.Equal(residue.StatusProcessed, r.Status)
}

func (s *EngineSuite) TestClaimBindsCollector() {
	c := s.seed(StatusRequested)

	updated, err := s.engine.Transition(context.Background(), c.ID, s.asCollector(), StatusAssigned)
	s.Require().NoError(err)
	s.Require().NotNil(updated.CollectorID)
	s.Equal(s.collector, *updated.CollectorID)
}

func (s *EngineSuite) TestInvalidTransitions() {
	ctx := context.Background()
	cases := []struct {
		name   string
		from   Status
		target Status
		actor  Actor
	}{
		{"skip assigned", StatusRequested, StatusEnRoute, s.asCollector()},
		{"skip delivery", StatusCollected, StatusProcessed, s.asRecycler()},
		{"backwards", StatusCollected, StatusAssigned, s.asCollector()},
		{"cancel after collection", StatusCollected, StatusCancelled, s.asCollector()},
		{"out of terminal state", StatusProcessed, StatusEnRoute, s.asCollector()},
		{"out of cancelled", StatusCancelled, StatusAssigned, s.asCollector()},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			c := s.seed(tc.from)
			_, err := s.engine.Transition(ctx, c.ID, tc.actor, tc.target)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition), "got %v", err)
		})
	}
}

func (s *EngineSuite) TestUnknownStatusRejected() {
	c := s.seed(StatusRequested)
	_, err := s.engine.Transition(context.Background(), c.ID, s.asCollector(), Status("teleported"))
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *EngineSuite) TestAuthorization() {
	ctx := context.Background()

	s.Run("citizen cannot claim", func() {
		c := s.seed(StatusRequested)
		_, err := s.engine.Transition(ctx, c.ID, s.asCitizen(), StatusAssigned)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("another collector cannot advance", func() {
		c := s.seed(StatusAssigned)
		other := Actor{ID: domain.NewUserID(), Role: domain.RoleCollector}
		_, err := s.engine.Transition(ctx, c.ID, other, StatusEnRoute)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("collector cannot process", func() {
		c := s.seed(StatusDelivered)
		_, err := s.engine.Transition(ctx, c.ID, s.asCollector(), StatusProcessed)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("any recycler may process", func() {
		c := s.seed(StatusDelivered)
		other := Actor{ID: domain.NewUserID(), Role: domain.RoleRecycler}
		updated, err := s.engine.Transition(ctx, c.ID, other, StatusProcessed)
		s.Require().NoError(err)
		s.Equal(StatusProcessed, updated.Status)
	})
}

func (s *EngineSuite) TestNoOpSaveAllowed() {
	ctx := context.Background()
	c := s.seed(StatusEnRoute)

	updated, err := s.engine.Transition(ctx, c.ID, s.asCollector(), StatusEnRoute)
	s.Require().NoError(err)
	s.Equal(StatusEnRoute, updated.Status)

	// Even a terminal state accepts its own value.
	c = s.seed(StatusProcessed)
	updated, err = s.engine.Transition(ctx, c.ID, s.asRecycler(), StatusProcessed)
	s.Require().NoError(err)
	s.Equal(StatusProcessed, updated.Status)
	s.Nil(updated.ProcessedAt, "no-op save must not stamp a processing time")
}

func (s *EngineSuite) TestCancellation() {
	ctx := context.Background()

	for _, from := range []Status{StatusAssigned, StatusEnRoute} {
		s.Run(string(from), func() {
			c := s.seed(from)
			updated, err := s.engine.Transition(ctx, c.ID, s.asCollector(), StatusCancelled)
			s.Require().NoError(err)
			s.Equal(StatusCancelled, updated.Status)

			// The residue goes back to awaiting so the citizen can re-request.
			r, err := s.residues.FindByID(ctx, c.ResidueID)
			s.Require().NoError(err)
			s.Equal(residue.StatusAwaitingRequest, r.Status)
		})
	}
}

func (s *EngineSuite) TestNotFound() {
	_, err := s.engine.Transition(context.Background(), domain.NewCollectionID(), s.asCollector(), StatusAssigned)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *EngineSuite) TestConcurrentClaimSingleWinner() {
	ctx := context.Background()
	c := s.seed(StatusRequested)

	claimants := []Actor{
		{ID: domain.NewUserID(), Role: domain.RoleCollector},
		{ID: domain.NewUserID(), Role: domain.RoleCollector},
		{ID: domain.NewUserID(), Role: domain.RoleCollector},
	}
	results := make(chan error, len(claimants))
	for _, actor := range claimants {
		go func() {
			_, err := s.engine.Transition(ctx, c.ID, actor, StatusAssigned)
			results <- err
		}()
	}

	var wins, conflicts int
	for range claimants {
		switch err := <-results; {
		case err == nil:
			wins++
		case dErrors.HasCode(err, dErrors.CodeConflict) ||
			dErrors.HasCode(err, dErrors.CodeForbidden) ||
			dErrors.HasCode(err, dErrors.CodeInvalidTransition):
			conflicts++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, wins, "exactly one claim wins")
	s.Equal(len(claimants)-1, conflicts)

	final, err := s.collections.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(StatusAssigned, final.Status)
	s.NotNil(final.CollectorID)
}
