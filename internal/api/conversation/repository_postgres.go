package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tripcanvas/tripcanvas/internal/types"
)

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repository = (*PostgresRepository)(nil)

// PostgresRepository stores the whole session state as a jsonb document so
// server-side conversation context survives process restarts and multiple
// instances.
type PostgresRepository struct {
	logger *slog.Logger
	pgpool PgxPool
}

func NewPostgresRepository(pgpool PgxPool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRepository) CreateSession(ctx context.Context, session *types.Session) error {
	state, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	query := `
        INSERT INTO sessions (id, state, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	if _, err = r.pgpool.Exec(ctx, query,
		session.ID, state, string(session.Status), session.CreatedAt, session.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetSession(ctx context.Context, sessionID string) (*types.Session, error) {
	query := `
        SELECT state
        FROM sessions
        WHERE id = $1 AND status = $2
    `
	var state []byte
	if err := r.pgpool.QueryRow(ctx, query, sessionID, string(types.StatusActive)).Scan(&state); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	var session types.Session
	if err := json.Unmarshal(state, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return &session, nil
}

func (r *PostgresRepository) UpdateSession(ctx context.Context, session *types.Session) error {
	session.UpdatedAt = time.Now()
	state, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	query := `
        UPDATE sessions
        SET state = $2, status = $3, updated_at = $4
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query, session.ID, state, string(session.Status), session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteSession(ctx context.Context, sessionID string) error {
	query := `
        UPDATE sessions
        SET status = $2, updated_at = $3
        WHERE id = $1
    `
	if _, err := r.pgpool.Exec(ctx, query, sessionID, string(types.StatusClosed), time.Now()); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}
