package collection

import (
	"context"
	"errors"
	"log/slog"

	"recircle/internal/audit"
	"recircle/internal/collection/metrics"
	"recircle/internal/residue"
	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
	"recircle/pkg/platform/sentinel"
	"recircle/pkg/platform/tx"
	"recircle/pkg/requestcontext"
)

// Engine validates and applies collection status transitions. It is the only
// writer of collection status and keeps the linked residue status consistent
// within the same unit of work.
type Engine struct {
	runner      tx.Runner
	collections Store
	residues    residue.Store
	metrics     *metrics.Metrics
	audit       audit.Publisher
	logger      *slog.Logger
}

func NewEngine(runner tx.Runner, collections Store, residues residue.Store, m *metrics.Metrics, publisher audit.Publisher, logger *slog.Logger) *Engine {
	return &Engine{
		runner:      runner,
		collections: collections,
		residues:    residues,
		metrics:     m,
		audit:       publisher,
		logger:      logger,
	}
}

// Transition applies a single validated status change on behalf of actor.
//
// Rules:
//   - re-selecting the current status is a no-op save, always permitted
//   - requested -> assigned is the collector's claim: it requires the
//     collector role and binds the actor as the collection's collector
//   - delivered -> processed requires the recycler role; any recycler may
//     process any delivered collection
//   - every other transition requires the collector role and ownership of
//     the collection
//
// The residue status is mirrored in the same unit of work: processed when the
// collection is processed, back to awaiting a request when it is cancelled.
func (e *Engine) Transition(ctx context.Context, id domain.CollectionID, actor Actor, target Status) (Collection, error) {
	if !target.Valid() {
		e.metrics.RecordFailure("invalid_status")
		return Collection{}, dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", target)
	}

	var (
		result  Collection
		applied Status
	)
	err := e.runner.Run(ctx, func(ctx context.Context) error {
		c, err := e.collections.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				e.metrics.RecordFailure("not_found")
				return dErrors.New(dErrors.CodeNotFound, "collection not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "fetch collection")
		}

		if c.Status == target {
			// No-op save: forms re-submit the current value. Refresh the
			// timestamp and keep everything else untouched. Still authorized,
			// so a claimant who lost the race is told so instead of getting a
			// success that bound someone else.
			if err := e.authorizeNoOp(c, actor); err != nil {
				e.metrics.RecordFailure("forbidden")
				return err
			}
			c.UpdatedAt = requestcontext.Now(ctx)
			if err := e.collections.Update(ctx, c, c.Status); err != nil {
				return e.translateUpdateErr(err)
			}
			result = c
			return nil
		}

		if !c.Status.CanTransitionTo(target) {
			e.metrics.RecordFailure("invalid_transition")
			return dErrors.Newf(dErrors.CodeInvalidTransition, "cannot move collection from %s to %s", c.Status, target)
		}
		if err := e.authorize(c, actor, target); err != nil {
			e.metrics.RecordFailure("forbidden")
			return err
		}

		from := c.Status
		now := requestcontext.Now(ctx)
		if from == StatusRequested && target == StatusAssigned {
			claimant := actor.ID
			c.CollectorID = &claimant
		}
		c.Status = target
		c.UpdatedAt = now
		if target == StatusProcessed {
			c.ProcessedAt = &now
		}
		if err := e.collections.Update(ctx, c, from); err != nil {
			return e.translateUpdateErr(err)
		}
		if err := e.mirrorResidue(ctx, c.ResidueID, target); err != nil {
			return err
		}

		// Recorded on save. A caller whose enclosing unit of work rolls back
		// afterwards does not retract the metric.
		e.metrics.RecordTransition(string(from), string(target))
		e.logger.InfoContext(ctx, "collection transition applied",
			"collection_id", c.ID.String(),
			"from", string(from),
			"to", string(target),
			"actor_id", actor.ID.String(),
			"actor_role", actor.Role.String(),
		)
		applied = from
		result = c
		return nil
	})
	if err != nil {
		return Collection{}, err
	}
	// Best-effort: when Transition joined a caller's unit of work this fires
	// before the outer commit and survives a later rollback.
	if applied != "" {
		e.audit.Emit(ctx, audit.Event{
			Kind:     audit.KindCollectionTransition,
			UserID:   actor.ID.String(),
			Entity:   "collection",
			EntityID: result.ID.String(),
			Detail:   string(applied) + " -> " + string(result.Status),
		})
	}
	return result, nil
}

func (e *Engine) authorizeNoOp(c Collection, actor Actor) error {
	switch {
	case c.CollectorID != nil && *c.CollectorID == actor.ID:
		return nil
	case c.Status == StatusRequested && actor.Role == domain.RoleCollector:
		return nil
	case c.Status == StatusProcessed && actor.Role == domain.RoleRecycler:
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "collection is assigned to another collector")
}

func (e *Engine) authorize(c Collection, actor Actor, target Status) error {
	switch {
	case c.Status == StatusRequested && target == StatusAssigned:
		if actor.Role != domain.RoleCollector {
			return dErrors.New(dErrors.CodeForbidden, "only a collector may claim a requested collection")
		}
	case target == StatusProcessed:
		if actor.Role != domain.RoleRecycler {
			return dErrors.New(dErrors.CodeForbidden, "only a recycler may process a delivered collection")
		}
	default:
		if actor.Role != domain.RoleCollector {
			return dErrors.New(dErrors.CodeForbidden, "only the assigned collector may advance a collection")
		}
		if c.CollectorID == nil || *c.CollectorID != actor.ID {
			return dErrors.New(dErrors.CodeForbidden, "collection is assigned to another collector")
		}
	}
	return nil
}

func (e *Engine) translateUpdateErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		// Lost a race: the row moved under us. The caller should re-fetch.
		e.metrics.RecordFailure("conflict")
		return dErrors.New(dErrors.CodeConflict, "collection changed concurrently, re-fetch and retry")
	case errors.Is(err, sentinel.ErrNotFound):
		e.metrics.RecordFailure("not_found")
		return dErrors.New(dErrors.CodeNotFound, "collection not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "save collection")
	}
}

// mirrorResidue keeps the residue status in lock-step with the collection:
// collection_requested while the collection is live, processed at the
// processed terminal state, and back to awaiting_request on cancellation so
// the citizen can request pickup again.
func (e *Engine) mirrorResidue(ctx context.Context, id domain.ResidueID, target Status) error {
	var mirrored residue.Status
	switch target {
	case StatusProcessed:
		mirrored = residue.StatusProcessed
	case StatusCancelled:
		mirrored = residue.StatusAwaitingRequest
	default:
		return nil
	}
	if err := e.residues.UpdateStatus(ctx, id, mirrored); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "mirror residue status")
	}
	return nil
}
