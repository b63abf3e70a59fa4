package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aora/backend/internal/db"
	"github.com/aora/backend/internal/models"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for user documents.
type PostgresUserRepository struct {
	pool  db.Pool
	table string
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool, tables Tables) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool, table: tables.Users}
}

// Create persists a new user document.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO `+r.table+` (id, account_id, email, username, avatar, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, user.ID, user.AccountID, user.Email, user.Username, user.Avatar, user.CreatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case "23505":
			return ErrConflict
		case "23503":
			return ErrNotFound
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByAccountID fetches the user document linked to an account.
func (r *PostgresUserRepository) FindByAccountID(ctx context.Context, accountID string) (models.User, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, account_id, email, username, avatar, created_at
        FROM `+r.table+`
        WHERE account_id = $1
    `, accountID)

	var user models.User
	if err := row.Scan(&user.ID, &user.AccountID, &user.Email, &user.Username, &user.Avatar, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by account: %w", err)
	}

	return user, nil
}
