// Package friendships provides a PostgreSQL-backed repository for the
// friendship pivot table.
package friendships

import (
	"context"
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

// Create inserts the (person, friend) pivot row. Adding an existing
// friendship is a no-op.
func (r *PostgresRepository) Create(ctx context.Context, personID, friendID string) error {
	query := `
		INSERT INTO friendships (person_id, friend_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, personID, friendID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, personID, friendID string) (bool, error) {
	query := `SELECT COUNT(*) FROM friendships WHERE person_id = $1 AND friend_id = $2`
	var n int
	if err := r.db.QueryRowContext(ctx, query, personID, friendID).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, personID, friendID string) error {
	query := `DELETE FROM friendships WHERE person_id = $1 AND friend_id = $2`
	res, err := r.db.ExecContext(ctx, query, personID, friendID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListFriends(ctx context.Context, personID string) ([]*models.User, error) {
	query := `
		SELECT u.id, u.username, u.password_hash, u.first_name, u.last_name, u.email, u.created_at
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.person_id = $1
		ORDER BY u.username
	`
	rows, err := r.db.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
