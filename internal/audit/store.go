package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"recircle/pkg/platform/tx"
)

// Sink receives drained audit events. Sinks must tolerate redelivery; the
// trail is best-effort, not exactly-once.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// MemoryStore keeps events in memory for dev mode and tests.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (s *MemoryStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}

// PostgresStore appends events to the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (id, kind, user_id, entity, entity_id, detail, device, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var userID any
	if event.UserID != "" {
		userID = event.UserID
	}
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		event.ID.String(), string(event.Kind), userID,
		event.Entity, event.EntityID, event.Detail, event.Device, event.At)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}
