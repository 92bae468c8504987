package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the slice of pgx that the Postgres store needs; *pgxpool.Pool
// satisfies it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists the session list as a single JSONB document keyed
// by a fixed name, for deployments that already run Postgres and want
// history shared across instances.
type PostgresStore struct {
	db   Querier
	name string
}

const sessionDocumentName = "generation-sessions"

// NewPostgresStore constructs a store over an existing connection pool.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db, name: sessionDocumentName}
}

// EnsureSchema creates the backing table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS generation_sessions (
			name       text PRIMARY KEY,
			payload    jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("session: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]GenerationSession, error) {
	var payload []byte
	err := s.db.QueryRow(ctx, `SELECT payload FROM generation_sessions WHERE name = $1`, s.name).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: load: %w", err)
	}
	var sessions []GenerationSession
	if err := json.Unmarshal(payload, &sessions); err != nil {
		return nil, fmt.Errorf("session: decode payload: %w", err)
	}
	return sessions, nil
}

func (s *PostgresStore) Save(ctx context.Context, sessions []GenerationSession) error {
	payload, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("session: encode payload: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO generation_sessions (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		s.name, payload)
	if err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
