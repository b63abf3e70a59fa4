package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aora/backend/internal/db"
	"github.com/aora/backend/internal/models"
)

// PostgresAccountRepository provides PostgreSQL-backed persistence for accounts.
type PostgresAccountRepository struct {
	pool  db.Pool
	table string
}

// NewPostgresAccountRepository constructs an account repository backed by PostgreSQL.
func NewPostgresAccountRepository(pool db.Pool, tables Tables) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool, table: tables.Accounts}
}

// Create persists a new account record.
func (r *PostgresAccountRepository) Create(ctx context.Context, account models.Account) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO `+r.table+` (id, email, password_hash, name, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, account.ID, account.Email, account.Password, account.Name, account.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// FindByEmail fetches an account by its email address.
func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, email, password_hash, name, created_at
        FROM `+r.table+`
        WHERE email = $1
    `, email)

	var account models.Account
	if err := row.Scan(&account.ID, &account.Email, &account.Password, &account.Name, &account.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("select account by email: %w", err)
	}

	return account, nil
}

// Delete removes an account by id. Its sessions and user document cascade.
func (r *PostgresAccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
        DELETE FROM `+r.table+`
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
