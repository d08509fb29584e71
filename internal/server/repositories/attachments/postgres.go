// Package attachments provides a PostgreSQL-backed repository for attachment
// and avatar rows.
package attachments

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

func (r *PostgresRepository) CreateAttachment(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	query := `
		INSERT INTO attachments (record_id, filename)
		VALUES ($1, $2)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, a.RecordID, a.Filename).Scan(&a.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetAttachment(ctx context.Context, id string) (*models.Attachment, error) {
	query := `SELECT id, record_id, filename, created_at FROM attachments WHERE id = $1`
	a := &models.Attachment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.RecordID, &a.Filename, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) ListByRecord(ctx context.Context, recordID string) ([]*models.Attachment, error) {
	query := `SELECT id, record_id, filename, created_at FROM attachments WHERE record_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Attachment
	for rows.Next() {
		a := &models.Attachment{}
		if err := rows.Scan(&a.ID, &a.RecordID, &a.Filename, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) DeleteAttachment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateAvatar(ctx context.Context, a *models.Avatar) (*models.Avatar, error) {
	query := `
		INSERT INTO avatars (user_id, filename)
		VALUES ($1, $2)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, a.UserID, a.Filename).Scan(&a.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetAvatar(ctx context.Context, id string) (*models.Avatar, error) {
	query := `SELECT id, user_id, filename, created_at FROM avatars WHERE id = $1`
	return r.scanAvatar(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetAvatarByUser(ctx context.Context, userID string) (*models.Avatar, error) {
	query := `SELECT id, user_id, filename, created_at FROM avatars WHERE user_id = $1`
	return r.scanAvatar(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) DeleteAvatar(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM avatars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanAvatar(row *sql.Row) (*models.Avatar, error) {
	a := &models.Avatar{}
	err := row.Scan(&a.ID, &a.UserID, &a.Filename, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}
