package identity

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

// PostgresStore persists user accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, u User) error {
	query := `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		u.ID.String(), u.Username, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (User, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE lower(username) = lower($1)
	`
	return s.scanUser(tx.Q(ctx, s.db).QueryRowContext(ctx, query, username))
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.UserID) (User, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return s.scanUser(tx.Q(ctx, s.db).QueryRowContext(ctx, query, id.String()))
}

func (s *PostgresStore) scanUser(row *sql.Row) (User, error) {
	var (
		rawID string
		u     User
	)
	err := row.Scan(&rawID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, sentinel.ErrNotFound
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}
	id, err := domain.ParseUserID(rawID)
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}
	u.ID = id
	return u, nil
}
