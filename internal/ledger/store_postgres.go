package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"recircle/pkg/domain"
	"recircle/pkg/platform/tx"
)

// PostgresStore persists the transaction log in PostgreSQL. Rows are only
// ever inserted; there is no update or delete path.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, t Transaction) error {
	query := `
		INSERT INTO points_transactions (user_id, delta, description, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		t.UserID.String(), t.Delta, t.Description, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID domain.UserID) ([]Transaction, error) {
	query := `
		SELECT id, user_id, delta, description, created_at
		FROM points_transactions
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := tx.Q(ctx, s.db).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var (
			t       Transaction
			rawUser string
			rawAt   time.Time
		)
		if err := rows.Scan(&t.ID, &rawUser, &t.Delta, &t.Description, &rawAt); err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		parsed, err := domain.ParseUserID(rawUser)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		t.UserID = parsed
		t.CreatedAt = rawAt
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SumByUser(ctx context.Context, userID domain.UserID) (int, error) {
	query := `
		SELECT COALESCE(SUM(delta), 0)
		FROM points_transactions
		WHERE user_id = $1
	`
	var sum int
	if err := tx.Q(ctx, s.db).QueryRowContext(ctx, query, userID.String()).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}
