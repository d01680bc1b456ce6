package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"notesbuzz/internal/apperr"
)

const uniqueViolation = "23505"

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// PostgresRepository stores users in the users table.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user and fills CreatedAt. A duplicate username or email
// yields apperr.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash).
		Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("create user %s: %w", user.Username, apperr.ErrConflict)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByUsername returns apperr.ErrNotFound when no user has that name.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM users
		WHERE username = $1`

	var user User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}
