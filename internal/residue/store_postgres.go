package residue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"recircle/pkg/domain"
	"recircle/pkg/platform/sentinel"
	"recircle/pkg/platform/tx"
)

// PostgresStore persists residues in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r Residue) error {
	query := `
		INSERT INTO residues (id, citizen_id, category, weight, units, location, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var weight *string
	if r.Weight != nil {
		w := r.Weight.String()
		weight = &w
	}
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		r.ID.String(), r.CitizenID.String(), r.Category, weight, r.Units,
		r.Location, string(r.Status), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("create residue: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ResidueID) (Residue, error) {
	query := `
		SELECT id, citizen_id, category, weight, units, location, status, created_at
		FROM residues
		WHERE id = $1
	`
	r, err := scanResidue(tx.Q(ctx, s.db).QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Residue{}, sentinel.ErrNotFound
		}
		return Residue{}, fmt.Errorf("find residue: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.ResidueID, status Status) error {
	query := `
		UPDATE residues
		SET status = $2
		WHERE id = $1
	`
	res, err := tx.Q(ctx, s.db).ExecContext(ctx, query, id.String(), string(status))
	if err != nil {
		return fmt.Errorf("update residue status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update residue status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByCitizen(ctx context.Context, citizenID domain.UserID) ([]Residue, error) {
	query := `
		SELECT id, citizen_id, category, weight, units, location, status, created_at
		FROM residues
		WHERE citizen_id = $1
		ORDER BY created_at
	`
	rows, err := tx.Q(ctx, s.db).QueryContext(ctx, query, citizenID.String())
	if err != nil {
		return nil, fmt.Errorf("list residues: %w", err)
	}
	defer rows.Close()

	var out []Residue
	for rows.Next() {
		r, err := scanResidue(rows)
		if err != nil {
			return nil, fmt.Errorf("list residues: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list residues: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResidue(row rowScanner) (Residue, error) {
	var (
		rawID      string
		rawCitizen string
		category   string
		rawWeight  sql.NullString
		units      sql.NullInt64
		location   string
		rawStatus  string
		createdAt  time.Time
	)
	if err := row.Scan(&rawID, &rawCitizen, &category, &rawWeight, &units, &location, &rawStatus, &createdAt); err != nil {
		return Residue{}, err
	}
	id, err := domain.ParseResidueID(rawID)
	if err != nil {
		return Residue{}, err
	}
	citizenID, err := domain.ParseUserID(rawCitizen)
	if err != nil {
		return Residue{}, err
	}
	r := Residue{
		ID:        id,
		CitizenID: citizenID,
		Category:  category,
		Location:  location,
		Status:    Status(rawStatus),
		CreatedAt: createdAt,
	}
	if rawWeight.Valid {
		w, err := decimal.NewFromString(rawWeight.String)
		if err != nil {
			return Residue{}, fmt.Errorf("parse weight: %w", err)
		}
		r.Weight = &w
	}
	if units.Valid {
		u := int(units.Int64)
		r.Units = &u
	}
	return r, nil
}
