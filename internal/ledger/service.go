package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"recircle/internal/audit"
	"recircle/internal/ledger/metrics"
	"recircle/internal/profile"
	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
	"recircle/pkg/platform/sentinel"
	"recircle/pkg/platform/tx"
	"recircle/pkg/requestcontext"
)

// Service pairs every balance mutation with a ledger row inside one unit of
// work. Nothing else in the codebase writes profile points.
type Service struct {
	runner       tx.Runner
	profiles     profile.Store
	transactions Store
	metrics      *metrics.Metrics
	audit        audit.Publisher
	logger       *slog.Logger
}

func NewService(runner tx.Runner, profiles profile.Store, transactions Store, m *metrics.Metrics, publisher audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		runner:       runner,
		profiles:     profiles,
		transactions: transactions,
		metrics:      m,
		audit:        publisher,
		logger:       logger,
	}
}

// Credit adds amount points to the user's balance with an in-place atomic
// increment and appends the matching +amount transaction row. The caller is
// responsible for the exactly-once condition (crediting only on the first
// transition into processed).
func (s *Service) Credit(ctx context.Context, userID domain.UserID, amount int, description string) error {
	if amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "credit amount must be positive")
	}
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		if err := s.profiles.Increment(ctx, userID, amount); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "profile not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "credit points")
		}
		return s.append(ctx, userID, amount, description)
	})
	if err != nil {
		return err
	}
	s.metrics.RecordCredit(amount)
	s.audit.Emit(ctx, audit.Event{
		Kind:     audit.KindPointsCredit,
		UserID:   userID.String(),
		Entity:   "profile",
		EntityID: userID.String(),
		Detail:   fmt.Sprintf("+%d: %s", amount, description),
	})
	s.logger.InfoContext(ctx, "points credited",
		"user_id", userID.String(), "amount", amount, "description", description)
	return nil
}

// Debit subtracts amount points, guarded so the balance can never go
// negative, and appends the matching -amount transaction row. The guard and
// the decrement are a single atomic store operation, so two concurrent
// debits against the same stale balance cannot both succeed.
func (s *Service) Debit(ctx context.Context, userID domain.UserID, amount int, description string) error {
	if amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "debit amount must be positive")
	}
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		if err := s.profiles.DecrementIfAvailable(ctx, userID, amount); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrInsufficientBalance):
				s.metrics.RecordInsufficientBalance()
				return dErrors.New(dErrors.CodeInsufficientBalance, "not enough points for this redemption")
			case errors.Is(err, sentinel.ErrNotFound):
				return dErrors.New(dErrors.CodeNotFound, "profile not found")
			default:
				return dErrors.Wrap(err, dErrors.CodeInternal, "debit points")
			}
		}
		return s.append(ctx, userID, -amount, description)
	})
	if err != nil {
		return err
	}
	s.metrics.RecordDebit(amount)
	s.audit.Emit(ctx, audit.Event{
		Kind:     audit.KindPointsDebit,
		UserID:   userID.String(),
		Entity:   "profile",
		EntityID: userID.String(),
		Detail:   fmt.Sprintf("-%d: %s", amount, description),
	})
	s.logger.InfoContext(ctx, "points debited",
		"user_id", userID.String(), "amount", amount, "description", description)
	return nil
}

// Balance returns the user's current point balance.
func (s *Service) Balance(ctx context.Context, userID domain.UserID) (int, error) {
	p, err := s.profiles.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "fetch balance")
	}
	return p.Points, nil
}

// History returns the user's ledger entries in append order.
func (s *Service) History(ctx context.Context, userID domain.UserID) ([]Transaction, error) {
	entries, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fetch ledger history")
	}
	return entries, nil
}

func (s *Service) append(ctx context.Context, userID domain.UserID, delta int, description string) error {
	entry := Transaction{
		UserID:      userID,
		Delta:       delta,
		Description: description,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.transactions.Append(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "append ledger entry")
	}
	return nil
}
