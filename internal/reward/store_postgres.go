package reward

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"recircle/pkg/domain"
	"recircle/pkg/platform/sentinel"
	"recircle/pkg/platform/tx"
)

// PostgresStore persists rewards and redemptions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListRewards(ctx context.Context) ([]Reward, error) {
	query := `
		SELECT id, name, points_required
		FROM rewards
		ORDER BY name
	`
	rows, err := tx.Q(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var out []Reward
	for rows.Next() {
		var (
			r     Reward
			rawID string
		)
		if err := rows.Scan(&rawID, &r.Name, &r.PointsRequired); err != nil {
			return nil, fmt.Errorf("list rewards: %w", err)
		}
		id, err := domain.ParseRewardID(rawID)
		if err != nil {
			return nil, fmt.Errorf("list rewards: %w", err)
		}
		r.ID = id
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindReward(ctx context.Context, id domain.RewardID) (Reward, error) {
	query := `
		SELECT id, name, points_required
		FROM rewards
		WHERE id = $1
	`
	var (
		r     Reward
		rawID string
	)
	err := tx.Q(ctx, s.db).QueryRowContext(ctx, query, id.String()).Scan(&rawID, &r.Name, &r.PointsRequired)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Reward{}, sentinel.ErrNotFound
		}
		return Reward{}, fmt.Errorf("find reward: %w", err)
	}
	parsed, err := domain.ParseRewardID(rawID)
	if err != nil {
		return Reward{}, fmt.Errorf("find reward: %w", err)
	}
	r.ID = parsed
	return r, nil
}

func (s *PostgresStore) UpsertReward(ctx context.Context, r Reward) error {
	query := `
		INSERT INTO rewards (id, name, points_required)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			points_required = EXCLUDED.points_required
	`
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query, r.ID.String(), r.Name, r.PointsRequired)
	if err != nil {
		return fmt.Errorf("upsert reward: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateRedemption(ctx context.Context, r Redemption) error {
	query := `
		INSERT INTO redemptions (id, user_id, reward_id, redeemed_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		r.ID.String(), r.UserID.String(), r.RewardID.String(), r.RedeemedAt)
	if err != nil {
		return fmt.Errorf("create redemption: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRedemptionsByUser(ctx context.Context, userID domain.UserID) ([]Redemption, error) {
	query := `
		SELECT id, user_id, reward_id, redeemed_at
		FROM redemptions
		WHERE user_id = $1
		ORDER BY redeemed_at
	`
	rows, err := tx.Q(ctx, s.db).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	var out []Redemption
	for rows.Next() {
		var (
			rawID     string
			rawUser   string
			rawReward string
			at        time.Time
		)
		if err := rows.Scan(&rawID, &rawUser, &rawReward, &at); err != nil {
			return nil, fmt.Errorf("list redemptions: %w", err)
		}
		redemptionID, err := domain.ParseRedemptionID(rawID)
		if err != nil {
			return nil, fmt.Errorf("list redemptions: %w", err)
		}
		user, err := domain.ParseUserID(rawUser)
		if err != nil {
			return nil, fmt.Errorf("list redemptions: %w", err)
		}
		rewardID, err := domain.ParseRewardID(rawReward)
		if err != nil {
			return nil, fmt.Errorf("list redemptions: %w", err)
		}
		out = append(out, Redemption{ID: redemptionID, UserID: user, RewardID: rewardID, RedeemedAt: at})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	return out, nil
}
