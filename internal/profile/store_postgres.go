package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"recircle/pkg/domain"
	"recircle/pkg/platform/sentinel"
	"recircle/pkg/platform/tx"
)

const pgUniqueViolation = "23505"

// PostgresStore persists profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p Profile) error {
	query := `
		INSERT INTO profiles (user_id, role, points)
		VALUES ($1, $2, $3)
	`
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query, p.UserID.String(), string(p.Role), p.Points)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID domain.UserID) (Profile, error) {
	query := `
		SELECT user_id, role, points
		FROM profiles
		WHERE user_id = $1
	`
	var (
		rawID   string
		rawRole string
		points  int
	)
	err := tx.Q(ctx, s.db).QueryRowContext(ctx, query, userID.String()).Scan(&rawID, &rawRole, &points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, sentinel.ErrNotFound
		}
		return Profile{}, fmt.Errorf("find profile: %w", err)
	}
	parsed, err := domain.ParseUserID(rawID)
	if err != nil {
		return Profile{}, fmt.Errorf("find profile: %w", err)
	}
	return Profile{UserID: parsed, Role: domain.Role(rawRole), Points: points}, nil
}

func (s *PostgresStore) Increment(ctx context.Context, userID domain.UserID, delta int) error {
	query := `
		UPDATE profiles
		SET points = points + $2
		WHERE user_id = $1
	`
	res, err := tx.Q(ctx, s.db).ExecContext(ctx, query, userID.String(), delta)
	if err != nil {
		return fmt.Errorf("increment points: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment points: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DecrementIfAvailable(ctx context.Context, userID domain.UserID, amount int) error {
	// Guarded decrement: the balance check and the write are one statement,
	// so two concurrent debits against the same row cannot both pass a stale
	// check.
	query := `
		UPDATE profiles
		SET points = points - $2
		WHERE user_id = $1 AND points >= $2
	`
	res, err := tx.Q(ctx, s.db).ExecContext(ctx, query, userID.String(), amount)
	if err != nil {
		return fmt.Errorf("decrement points: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement points: %w", err)
	}
	if affected == 0 {
		if _, findErr := s.FindByUser(ctx, userID); errors.Is(findErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrInsufficientBalance
	}
	return nil
}
