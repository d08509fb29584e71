// Package records provides a PostgreSQL-backed repository for records and
// their companion pivot rows.
package records

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

const recordColumns = `id, creator_id, title, note, occurred_on, amount, currency, mood, state, created_at`

// Create inserts a record row and returns it with the generated ID.
// Companion and attachment rows are managed separately.
func (r *PostgresRepository) Create(ctx context.Context, record *models.Record) (*models.Record, error) {
	query := `
		INSERT INTO records (creator_id, title, note, occurred_on, amount, currency, mood, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		record.CreatorID, record.Title, record.Note, record.OccurredOn,
		record.Amount, record.Currency, record.Mood, record.State).Scan(&record.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return record, nil
}

// GetByID returns the record row regardless of its lifecycle state.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`
	rec := &models.Record{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.CreatorID, &rec.Title, &rec.Note, &rec.OccurredOn,
		&rec.Amount, &rec.Currency, &rec.Mood, &rec.State, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// ListVisible returns active records the user owns or accompanies,
// newest occurrence first.
func (r *PostgresRepository) ListVisible(ctx context.Context, userID string) ([]*models.Record, error) {
	query := `
		SELECT DISTINCT ` + recordColumns + `
		FROM records
		LEFT JOIN record_companions rc ON rc.record_id = records.id
		WHERE state = 'active' AND (creator_id = $1 OR rc.user_id = $1)
		ORDER BY occurred_on DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		rec := &models.Record{}
		if err := rows.Scan(&rec.ID, &rec.CreatorID, &rec.Title, &rec.Note, &rec.OccurredOn,
			&rec.Amount, &rec.Currency, &rec.Mood, &rec.State, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Update rewrites the mutable fields of the record row.
func (r *PostgresRepository) Update(ctx context.Context, record *models.Record) error {
	query := `
		UPDATE records
		SET title = $2, note = $3, occurred_on = $4, amount = $5, currency = $6, mood = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, record.ID,
		record.Title, record.Note, record.OccurredOn, record.Amount, record.Currency, record.Mood)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SetState transitions the record lifecycle tag.
func (r *PostgresRepository) SetState(ctx context.Context, id string, state models.RecordState) error {
	query := `UPDATE records SET state = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, state)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// AddCompanion attaches a user to the record. Attaching twice is a no-op.
func (r *PostgresRepository) AddCompanion(ctx context.Context, recordID, userID string) error {
	query := `
		INSERT INTO record_companions (record_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, recordID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RemoveCompanion detaches a user from the record.
func (r *PostgresRepository) RemoveCompanion(ctx context.Context, recordID, userID string) error {
	query := `DELETE FROM record_companions WHERE record_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, recordID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListCompanionIDs returns the IDs of users attached to the record.
func (r *PostgresRepository) ListCompanionIDs(ctx context.Context, recordID string) ([]string, error) {
	query := `SELECT user_id FROM record_companions WHERE record_id = $1`
	rows, err := r.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
