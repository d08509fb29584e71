package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ebalakin/costmate/internal/client/api"
	"github.com/ebalakin/costmate/internal/client/sanitize"
	"github.com/ebalakin/costmate/internal/client/storage"
	"github.com/ebalakin/costmate/internal/common"
)

// RecordService wraps the record endpoints and keeps the local cache of the
// visible record list current. Mutations refresh the cache on success;
// reads fall back to the cache when offline.
type RecordService struct {
	client api.Client
	stores *Stores
}

// NewRecordService constructs a RecordService.
func NewRecordService(client api.Client, stores *Stores) *RecordService {
	return &RecordService{client: client, stores: stores}
}

// List fetches the visible records and caches them. When the server is
// unreachable, the cached list is returned instead, with cached=true.
// Server-side failures (an expired session, for one) are surfaced, never
// masked by the cache.
func (s *RecordService) List(ctx context.Context) (records []api.Record, cached bool, err error) {
	records, err = s.client.ListRecords(ctx)
	if err != nil {
		if !errors.Is(err, sanitize.ErrNetworkFailure) {
			return nil, false, err
		}
		cachedRecords, cacheErr := s.cachedList(ctx)
		if cacheErr != nil {
			return nil, false, err
		}
		return cachedRecords, true, nil
	}

	if value, marshalErr := json.Marshal(records); marshalErr == nil {
		_ = s.stores.Plain.Save(ctx, storage.KeyCachedRecords, value)
	}
	return records, false, nil
}

func (s *RecordService) cachedList(ctx context.Context) ([]api.Record, error) {
	value, err := s.stores.Plain.Get(ctx, storage.KeyCachedRecords)
	if errors.Is(err, common.ErrNotFound) {
		return []api.Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	var records []api.Record
	if err := json.Unmarshal(value, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Create creates a record with the given companions.
func (s *RecordService) Create(ctx context.Context, p api.RecordParams) (*api.Record, error) {
	return s.client.CreateRecord(ctx, p)
}

// Get fetches one record with its companions and asset ids.
func (s *RecordService) Get(ctx context.Context, id string) (*api.Record, error) {
	return s.client.GetRecord(ctx, id)
}

// Update replaces the record's editable fields.
func (s *RecordService) Update(ctx context.Context, id string, p api.RecordParams) (*api.Record, error) {
	return s.client.UpdateRecord(ctx, id, p)
}

// Delete soft-deletes the record.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	return s.client.DeleteRecord(ctx, id)
}

// AddCompanion attaches a friend to the record.
func (s *RecordService) AddCompanion(ctx context.Context, recordID, userID string) error {
	return s.client.AddCompanion(ctx, recordID, userID)
}

// RemoveCompanion detaches a companion from the record.
func (s *RecordService) RemoveCompanion(ctx context.Context, recordID, userID string) error {
	return s.client.RemoveCompanion(ctx, recordID, userID)
}

// UploadAttachment uploads file bytes to the record and returns the asset id.
func (s *RecordService) UploadAttachment(ctx context.Context, recordID string, data []byte) (string, error) {
	return s.client.UploadAttachment(ctx, recordID, data)
}

// DownloadAttachment fetches attachment bytes.
func (s *RecordService) DownloadAttachment(ctx context.Context, recordID, assetID string) ([]byte, error) {
	return s.client.AttachmentFile(ctx, recordID, assetID)
}

// DeleteAttachment removes the attachment.
func (s *RecordService) DeleteAttachment(ctx context.Context, recordID, assetID string) error {
	return s.client.DeleteAttachment(ctx, recordID, assetID)
}
