// Package tokens provides a PostgreSQL-backed repository for the opaque
// bearer tokens used in the server's authentication flow.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ebalakin/costmate/internal/common"
	"github.com/ebalakin/costmate/internal/dbx"
	"github.com/ebalakin/costmate/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new token row and returns it with the generated ID.
func (r *PostgresRepository) Create(ctx context.Context, token *models.Token) (*models.Token, error) {
	query := `
		INSERT INTO tokens (user_id, token, os_name, time_zone)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		token.UserID, token.Token, token.OSName, token.TimeZone).Scan(&token.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// FindByValue returns the token row for the given opaque value.
// If not found, it returns common.ErrNotFound.
func (r *PostgresRepository) FindByValue(ctx context.Context, value string) (*models.Token, error) {
	query := `
		SELECT id, user_id, token, revoked, os_name, time_zone, created_at
		FROM tokens
		WHERE token = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, value))
}

// FindActive returns the non-revoked token scoped to (userID, osName, timeZone).
func (r *PostgresRepository) FindActive(ctx context.Context, userID, osName, timeZone string) (*models.Token, error) {
	query := `
		SELECT id, user_id, token, revoked, os_name, time_zone, created_at
		FROM tokens
		WHERE user_id = $1 AND os_name = $2 AND time_zone = $3 AND revoked = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, osName, timeZone))
}

// Revoke marks a token revoked. Revoking an already-revoked token is a no-op.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	query := `
		UPDATE tokens SET revoked = TRUE
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Token, error) {
	t := &models.Token{}
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.Revoked, &t.OSName, &t.TimeZone, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
