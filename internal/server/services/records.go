package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ebalakin/costmate/internal/common"
	"github.com/ebalakin/costmate/internal/dbx"
	"github.com/ebalakin/costmate/internal/server/events"
	"github.com/ebalakin/costmate/internal/server/models"
	"github.com/ebalakin/costmate/internal/server/repositories/repomanager"
)

// RecordParams carries the mutable fields of a record plus the companions to
// attach on create.
type RecordParams struct {
	Title        string
	Note         string
	OccurredOn   time.Time
	Amount       float64
	Currency     string
	Mood         int
	CompanionIDs []string
}

// RecordService provides CRUD and companion management for records.
// Ownership and visibility rules live here, not in the HTTP layer.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   events.Publisher
}

// NewRecordService constructs a RecordService.
func NewRecordService(db *sql.DB, m repomanager.RepositoryManager, pub events.Publisher) *RecordService {
	return &RecordService{db: db, repomanager: m, publisher: pub}
}

// Create inserts the record row and its companion pivot rows in a single
// transaction, so a partial failure leaves nothing behind. Every companion
// must already be a friend of the creator.
func (s *RecordService) Create(ctx context.Context, principalID string, p RecordParams) (*models.Record, error) {
	for _, companionID := range p.CompanionIDs {
		ok, err := s.repomanager.Friendships(s.db).Exists(ctx, principalID, companionID)
		if err != nil {
			return nil, common.ErrInternal
		}
		if !ok {
			return nil, common.ErrBadRequest
		}
	}

	rec := &models.Record{
		CreatorID:  principalID,
		Title:      p.Title,
		Note:       p.Note,
		OccurredOn: p.OccurredOn,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Mood:       p.Mood,
		State:      models.RecordStateActive,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)
		created, err := repo.Create(ctx, rec)
		if err != nil {
			return err
		}
		rec = created
		for _, companionID := range p.CompanionIDs {
			if err := repo.AddCompanion(ctx, rec.ID, companionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, common.ErrInternal
	}
	rec.CompanionIDs = p.CompanionIDs

	s.publisher.Publish(ctx, events.RecordCreated, events.RecordPayload{
		RecordID: rec.ID, CreatorID: rec.CreatorID, CompanionIDs: rec.CompanionIDs,
	})
	return rec, nil
}

// Get returns a record visible to the principal. Soft-deleted records are
// ErrNotFound for everyone, including the creator; active records require the
// principal to be the creator or a companion.
func (s *RecordService) Get(ctx context.Context, principalID, recordID string) (*models.Record, error) {
	rec, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := requireVisible(rec); err != nil {
		return nil, err
	}
	if err := canViewRecord(principalID, rec); err != nil {
		return nil, err
	}

	attached, err := s.repomanager.Attachments(s.db).ListByRecord(ctx, recordID)
	if err != nil {
		return nil, common.ErrInternal
	}
	for _, a := range attached {
		rec.Attachments = append(rec.Attachments, *a)
	}
	return rec, nil
}

// List returns the active records the principal owns or accompanies.
func (s *RecordService) List(ctx context.Context, principalID string) ([]*models.Record, error) {
	result, err := s.repomanager.Records(s.db).ListVisible(ctx, principalID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return result, nil
}

// Update rewrites the record's mutable fields. Owner only; invisible once
// deleted.
func (s *RecordService) Update(ctx context.Context, principalID, recordID string, p RecordParams) (*models.Record, error) {
	rec, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := requireVisible(rec); err != nil {
		return nil, err
	}
	if err := authorizeRecordOwner(principalID, rec); err != nil {
		return nil, err
	}

	rec.Title = p.Title
	rec.Note = p.Note
	rec.OccurredOn = p.OccurredOn
	rec.Amount = p.Amount
	rec.Currency = p.Currency
	rec.Mood = p.Mood
	if err := s.repomanager.Records(s.db).Update(ctx, rec); err != nil {
		return nil, common.ErrInternal
	}
	return rec, nil
}

// Delete transitions the record to the deleted state. The row and its blobs
// stay in place; the record simply becomes invisible.
func (s *RecordService) Delete(ctx context.Context, principalID, recordID string) error {
	rec, err := s.load(ctx, recordID)
	if err != nil {
		return err
	}
	if err := requireVisible(rec); err != nil {
		return err
	}
	if err := authorizeRecordOwner(principalID, rec); err != nil {
		return err
	}
	if err := s.repomanager.Records(s.db).SetState(ctx, recordID, models.RecordStateDeleted); err != nil {
		return common.ErrInternal
	}
	return nil
}

// AddCompanion attaches a friend of the owner to the record.
func (s *RecordService) AddCompanion(ctx context.Context, principalID, recordID, userID string) error {
	rec, err := s.load(ctx, recordID)
	if err != nil {
		return err
	}
	if err := requireVisible(rec); err != nil {
		return err
	}
	if err := authorizeRecordOwner(principalID, rec); err != nil {
		return err
	}

	ok, err := s.repomanager.Friendships(s.db).Exists(ctx, principalID, userID)
	if err != nil {
		return common.ErrInternal
	}
	if !ok {
		return common.ErrBadRequest
	}

	if err := s.repomanager.Records(s.db).AddCompanion(ctx, recordID, userID); err != nil {
		return common.ErrInternal
	}
	return nil
}

// RemoveCompanion detaches a user from the record. Owner only.
func (s *RecordService) RemoveCompanion(ctx context.Context, principalID, recordID, userID string) error {
	rec, err := s.load(ctx, recordID)
	if err != nil {
		return err
	}
	if err := requireVisible(rec); err != nil {
		return err
	}
	if err := authorizeRecordOwner(principalID, rec); err != nil {
		return err
	}
	if err := s.repomanager.Records(s.db).RemoveCompanion(ctx, recordID, userID); err != nil {
		return common.ErrInternal
	}
	return nil
}

// load fetches a record with its companion IDs, mapping repo errors onto the
// service taxonomy.
func (s *RecordService) load(ctx context.Context, recordID string) (*models.Record, error) {
	repo := s.repomanager.Records(s.db)
	rec, err := repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	ids, err := repo.ListCompanionIDs(ctx, recordID)
	if err != nil {
		return nil, common.ErrInternal
	}
	rec.CompanionIDs = ids
	return rec, nil
}
