// Package workflow sequences the role-specific composite operations: a
// citizen submits a residue and requests pickup, a recycler processes a
// delivered collection. Each composite operation runs inside one unit of
// work so a status change and its points credit are all-or-nothing.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"recircle/internal/audit"
	"recircle/internal/collection"
	"recircle/internal/ledger"
	"recircle/internal/residue"
	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
	"recircle/pkg/platform/sentinel"
	"recircle/pkg/platform/tx"
	"recircle/pkg/requestcontext"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// TransitionEngine is the slice of the collection engine the orchestrator
// needs.
type TransitionEngine interface {
	Transition(ctx context.Context, id domain.CollectionID, actor collection.Actor, target collection.Status) (collection.Collection, error)
}

// PointsLedger is the slice of the ledger service the orchestrator needs.
type PointsLedger interface {
	Credit(ctx context.Context, userID domain.UserID, amount int, description string) error
}

// Service wires the engine and the ledger into the composite operations.
type Service struct {
	runner      tx.Runner
	residues    residue.Store
	collections collection.Store
	engine      TransitionEngine
	ledger      PointsLedger
	policy      ledger.AwardPolicy
	audit       audit.Publisher
	tracer      trace.Tracer
	logger      *slog.Logger
}

func NewService(
	runner tx.Runner,
	residues residue.Store,
	collections collection.Store,
	engine TransitionEngine,
	pointsLedger PointsLedger,
	policy ledger.AwardPolicy,
	publisher audit.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		runner:      runner,
		residues:    residues,
		collections: collections,
		engine:      engine,
		ledger:      pointsLedger,
		policy:      policy,
		audit:       publisher,
		tracer:      otel.Tracer("recircle/workflow"),
		logger:      logger,
	}
}

// SubmitInput is a citizen's residue submission.
type SubmitInput struct {
	Category string
	Weight   *decimal.Decimal
	Units    *int
	Location string
}

// SubmitResidue creates a residue in its initial awaiting state.
func (s *Service) SubmitResidue(ctx context.Context, citizenID domain.UserID, input SubmitInput) (residue.Residue, error) {
	ctx, span := s.tracer.Start(ctx, "workflow.SubmitResidue")
	defer span.End()

	r := residue.Residue{
		ID:        domain.NewResidueID(),
		CitizenID: citizenID,
		Category:  input.Category,
		Weight:    input.Weight,
		Units:     input.Units,
		Location:  input.Location,
		Status:    residue.StatusAwaitingRequest,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := r.Validate(); err != nil {
		return residue.Residue{}, err
	}
	if err := s.residues.Create(ctx, r); err != nil {
		return residue.Residue{}, dErrors.Wrap(err, dErrors.CodeInternal, "create residue")
	}
	s.logger.InfoContext(ctx, "residue submitted",
		"residue_id", r.ID.String(), "citizen_id", citizenID.String(), "category", r.Category)
	return r, nil
}

// RequestPickup creates the collection for a residue the citizen owns, in
// its requested state, and mirrors the residue status in one unit of work.
func (s *Service) RequestPickup(ctx context.Context, citizenID domain.UserID, residueID domain.ResidueID) (collection.Collection, error) {
	ctx, span := s.tracer.Start(ctx, "workflow.RequestPickup")
	defer span.End()

	var created collection.Collection
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		r, err := s.residues.FindByID(ctx, residueID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "residue not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "fetch residue")
		}
		if r.CitizenID != citizenID {
			return dErrors.New(dErrors.CodeForbidden, "residue belongs to another citizen")
		}
		if r.Status != residue.StatusAwaitingRequest {
			return dErrors.New(dErrors.CodeAlreadyRequested, "collection already requested for this residue")
		}

		now := requestcontext.Now(ctx)
		created = collection.Collection{
			ID:        domain.NewCollectionID(),
			ResidueID: residueID,
			Status:    collection.StatusRequested,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.collections.Create(ctx, created); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				// The one-to-one constraint caught a concurrent request.
				return dErrors.New(dErrors.CodeAlreadyRequested, "collection already requested for this residue")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "create collection")
		}
		if err := s.residues.UpdateStatus(ctx, residueID, residue.StatusCollectionRequested); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "mirror residue status")
		}
		return nil
	})
	if err != nil {
		return collection.Collection{}, err
	}

	s.audit.Emit(ctx, audit.Event{
		Kind:     audit.KindCollectionRequested,
		UserID:   citizenID.String(),
		Entity:   "collection",
		EntityID: created.ID.String(),
		Detail:   "pickup requested for residue " + residueID.String(),
	})
	s.logger.InfoContext(ctx, "pickup requested",
		"collection_id", created.ID.String(), "residue_id", residueID.String())
	return created, nil
}

// ProcessDelivered moves a delivered collection to its processed terminal
// state and credits the originating citizen, atomically. Calling it again on
// an already-processed collection is a true no-op: no error, no second
// credit.
func (s *Service) ProcessDelivered(ctx context.Context, recyclerID domain.UserID, collectionID domain.CollectionID) (collection.Collection, error) {
	ctx, span := s.tracer.Start(ctx, "workflow.ProcessDelivered")
	defer span.End()

	var (
		result  collection.Collection
		award   int
		awarded domain.UserID
	)
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		c, err := s.collections.FindByID(ctx, collectionID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "collection not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "fetch collection")
		}
		if c.Status == collection.StatusProcessed {
			// Already processed: the credit happened on the first call.
			result = c
			return nil
		}
		if c.Status != collection.StatusDelivered {
			return dErrors.Newf(dErrors.CodeNotReady, "collection is %s, not delivered", c.Status)
		}

		actor := collection.Actor{ID: recyclerID, Role: domain.RoleRecycler}
		processed, err := s.engine.Transition(ctx, collectionID, actor, collection.StatusProcessed)
		if err != nil {
			return err
		}

		r, err := s.residues.FindByID(ctx, processed.ResidueID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "fetch residue for award")
		}
		award = s.policy.Award(r)
		if award > 0 {
			description := fmt.Sprintf("%s processed", r.Category)
			if err := s.ledger.Credit(ctx, r.CitizenID, award, description); err != nil {
				return err
			}
			awarded = r.CitizenID
		}
		result = processed
		return nil
	})
	if err != nil {
		return collection.Collection{}, err
	}

	if award > 0 {
		s.logger.InfoContext(ctx, "collection processed",
			"collection_id", collectionID.String(),
			"citizen_id", awarded.String(),
			"award", award,
		)
	}
	return result, nil
}

// AvailableCollections lists requested collections a collector may claim.
func (s *Service) AvailableCollections(ctx context.Context) ([]collection.Collection, error) {
	out, err := s.collections.ListByStatus(ctx, collection.StatusRequested)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list available collections")
	}
	return out, nil
}

// CollectorCollections lists the collections assigned to a collector.
func (s *Service) CollectorCollections(ctx context.Context, collectorID domain.UserID) ([]collection.Collection, error) {
	out, err := s.collections.ListByCollector(ctx, collectorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list collector collections")
	}
	return out, nil
}

// CitizenResidues lists a citizen's own residues.
func (s *Service) CitizenResidues(ctx context.Context, citizenID domain.UserID) ([]residue.Residue, error) {
	out, err := s.residues.ListByCitizen(ctx, citizenID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list residues")
	}
	return out, nil
}
