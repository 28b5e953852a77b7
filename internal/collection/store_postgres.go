package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"recircle/pkg/domain"
	"recircle/pkg/platform/sentinel"
	"recircle/pkg/platform/tx"
)

const pgUniqueViolation = "23505"

// PostgresStore persists collections in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c Collection) error {
	query := `
		INSERT INTO collections (id, residue_id, collector_id, status, created_at, updated_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		c.ID.String(), c.ResidueID.String(), collectorArg(c.CollectorID),
		string(c.Status), c.CreatedAt, c.UpdatedAt, c.ProcessedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// FindByID reads a fresh row. Inside a unit of work it takes a row lock so
// concurrent transitions on the same collection serialize on the store.
func (s *PostgresStore) FindByID(ctx context.Context, id domain.CollectionID) (Collection, error) {
	query := `
		SELECT id, residue_id, collector_id, status, created_at, updated_at, processed_at
		FROM collections
		WHERE id = $1
	`
	if _, inTx := tx.From(ctx); inTx {
		query += " FOR UPDATE"
	}
	c, err := scanCollection(tx.Q(ctx, s.db).QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Collection{}, sentinel.ErrNotFound
		}
		return Collection{}, fmt.Errorf("find collection: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindByResidue(ctx context.Context, residueID domain.ResidueID) (Collection, error) {
	query := `
		SELECT id, residue_id, collector_id, status, created_at, updated_at, processed_at
		FROM collections
		WHERE residue_id = $1 AND status <> 'cancelled'
	`
	c, err := scanCollection(tx.Q(ctx, s.db).QueryRowContext(ctx, query, residueID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Collection{}, sentinel.ErrNotFound
		}
		return Collection{}, fmt.Errorf("find collection by residue: %w", err)
	}
	return c, nil
}

// Update writes the row guarded on its expected current status. Zero rows
// affected means another writer got there first.
func (s *PostgresStore) Update(ctx context.Context, c Collection, from Status) error {
	query := `
		UPDATE collections
		SET collector_id = $2, status = $3, updated_at = $4, processed_at = $5
		WHERE id = $1 AND status = $6
	`
	res, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		c.ID.String(), collectorArg(c.CollectorID), string(c.Status),
		c.UpdatedAt, c.ProcessedAt, string(from))
	if err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]Collection, error) {
	query := `
		SELECT id, residue_id, collector_id, status, created_at, updated_at, processed_at
		FROM collections
		WHERE status = $1
		ORDER BY created_at
	`
	return s.list(ctx, query, string(status))
}

func (s *PostgresStore) ListByCollector(ctx context.Context, collectorID domain.UserID) ([]Collection, error) {
	query := `
		SELECT id, residue_id, collector_id, status, created_at, updated_at, processed_at
		FROM collections
		WHERE collector_id = $1
		ORDER BY created_at
	`
	return s.list(ctx, query, collectorID.String())
}

func (s *PostgresStore) list(ctx context.Context, query string, arg any) ([]Collection, error) {
	rows, err := tx.Q(ctx, s.db).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var out []Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("list collections: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return out, nil
}

func collectorArg(id *domain.UserID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (Collection, error) {
	var (
		rawID        string
		rawResidue   string
		rawCollector sql.NullString
		rawStatus    string
		createdAt    time.Time
		updatedAt    time.Time
		processedAt  sql.NullTime
	)
	if err := row.Scan(&rawID, &rawResidue, &rawCollector, &rawStatus, &createdAt, &updatedAt, &processedAt); err != nil {
		return Collection{}, err
	}
	id, err := domain.ParseCollectionID(rawID)
	if err != nil {
		return Collection{}, err
	}
	residueID, err := domain.ParseResidueID(rawResidue)
	if err != nil {
		return Collection{}, err
	}
	c := Collection{
		ID:        id,
		ResidueID: residueID,
		Status:    Status(rawStatus),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if rawCollector.Valid {
		collectorID, err := domain.ParseUserID(rawCollector.String)
		if err != nil {
			return Collection{}, err
		}
		c.CollectorID = &collectorID
	}
	if processedAt.Valid {
		t := processedAt.Time
		c.ProcessedAt = &t
	}
	return c, nil
}
