package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aora/backend/internal/auth"
	"github.com/aora/backend/internal/db"
	"github.com/aora/backend/internal/models"
)

// PostgresSessionStore persists sessions to PostgreSQL.
type PostgresSessionStore struct {
	pool  db.Pool
	table string
}

// NewPostgresSessionStore constructs a session store backed by PostgreSQL.
func NewPostgresSessionStore(pool db.Pool, tables Tables) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool, table: tables.Sessions}
}

// Save stores or updates a session record.
func (s *PostgresSessionStore) Save(ctx context.Context, session models.Session) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO `+s.table+` (secret, account_id, expires_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (secret)
        DO UPDATE SET account_id = EXCLUDED.account_id, expires_at = EXCLUDED.expires_at
    `, session.Secret, session.AccountID, session.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

// Find loads a session by its secret.
func (s *PostgresSessionStore) Find(ctx context.Context, secret string) (models.Session, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT secret, account_id, expires_at
        FROM `+s.table+`
        WHERE secret = $1
    `, secret)

	var session models.Session
	var expiresAt time.Time
	if err := row.Scan(&session.Secret, &session.AccountID, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, auth.ErrSessionNotFound
		}
		return models.Session{}, fmt.Errorf("select session: %w", err)
	}

	session.ExpiresAt = expiresAt.UTC()
	return session, nil
}

// Delete removes a session by its secret.
func (s *PostgresSessionStore) Delete(ctx context.Context, secret string) error {
	tag, err := s.pool.Exec(ctx, `
        DELETE FROM `+s.table+`
        WHERE secret = $1
    `, secret)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrSessionNotFound
	}

	return nil
}

var _ auth.SessionStore = (*PostgresSessionStore)(nil)
