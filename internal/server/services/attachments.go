package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ebalakin/costmate/internal/common"
	"github.com/ebalakin/costmate/internal/logging"
	"github.com/ebalakin/costmate/internal/server/models"
	"github.com/ebalakin/costmate/internal/server/repositories/repomanager"
)

// AttachmentService manages record attachments and user avatars: database
// rows plus the backing blobs. Blob deletion is best-effort, never
// transactional with the row.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       BlobStore
	logger      logging.Logger
}

// NewAttachmentService constructs an AttachmentService.
func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, blobs BlobStore, logger logging.Logger) *AttachmentService {
	return &AttachmentService{db: db, repomanager: m, blobs: blobs, logger: logger}
}

// UploadAttachment stores data under a generated key and links it to the
// record. Owner only; deleted records are invisible.
func (s *AttachmentService) UploadAttachment(ctx context.Context, principalID, recordID string, data []byte) (*models.Attachment, error) {
	rec, err := s.loadRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := requireVisible(rec); err != nil {
		return nil, err
	}
	if err := authorizeRecordOwner(principalID, rec); err != nil {
		return nil, err
	}

	key := MakeStorageKey()
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return nil, common.ErrInternal
	}

	a := &models.Attachment{RecordID: recordID, Filename: key}
	created, err := s.repomanager.Attachments(s.db).CreateAttachment(ctx, a)
	if err != nil {
		// The row failed after the blob was written; reclaim the blob.
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			s.logger.Warn(ctx, "orphaned blob", "key", key, "err", derr)
		}
		return nil, common.ErrInternal
	}
	return created, nil
}

// AttachmentURL returns a short-lived download URL for an attachment. The
// attachment must belong to the path-supplied record; a mismatch is a bad
// request. Creator and companions may download.
func (s *AttachmentService) AttachmentURL(ctx context.Context, principalID, recordID, attachmentID string) (string, error) {
	rec, err := s.loadRecord(ctx, recordID)
	if err != nil {
		return "", err
	}
	if err := requireVisible(rec); err != nil {
		return "", err
	}
	if err := canViewRecord(principalID, rec); err != nil {
		return "", err
	}

	a, err := s.getAttachment(ctx, attachmentID)
	if err != nil {
		return "", err
	}
	if err := requireAttachmentParent(a, recordID); err != nil {
		return "", err
	}

	url, err := s.blobs.PresignGet(ctx, a.Filename)
	if err != nil {
		return "", common.ErrInternal
	}
	return url, nil
}

// DeleteAttachment removes the attachment row, then deletes the blob
// best-effort. Owner only.
func (s *AttachmentService) DeleteAttachment(ctx context.Context, principalID, recordID, attachmentID string) error {
	rec, err := s.loadRecord(ctx, recordID)
	if err != nil {
		return err
	}
	if err := requireVisible(rec); err != nil {
		return err
	}
	if err := authorizeRecordOwner(principalID, rec); err != nil {
		return err
	}

	a, err := s.getAttachment(ctx, attachmentID)
	if err != nil {
		return err
	}
	if err := requireAttachmentParent(a, recordID); err != nil {
		return err
	}

	if err := s.repomanager.Attachments(s.db).DeleteAttachment(ctx, attachmentID); err != nil {
		return common.ErrInternal
	}
	if err := s.blobs.Delete(ctx, a.Filename); err != nil {
		s.logger.Warn(ctx, "blob delete failed", "key", a.Filename, "err", err)
	}
	return nil
}

// SetAvatar replaces the user's avatar. Self-access only. The previous blob
// and row, if any, are removed; blob removal is best-effort.
func (s *AttachmentService) SetAvatar(ctx context.Context, principalID, targetID string, data []byte) (*models.Avatar, error) {
	if err := authorizeSelf(principalID, targetID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Attachments(s.db)
	previous, err := repo.GetAvatarByUser(ctx, targetID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInternal
	}

	key := MakeStorageKey()
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return nil, common.ErrInternal
	}

	if previous != nil {
		if err := repo.DeleteAvatar(ctx, previous.ID); err != nil {
			return nil, common.ErrInternal
		}
		if err := s.blobs.Delete(ctx, previous.Filename); err != nil {
			s.logger.Warn(ctx, "blob delete failed", "key", previous.Filename, "err", err)
		}
	}

	created, err := repo.CreateAvatar(ctx, &models.Avatar{UserID: targetID, Filename: key})
	if err != nil {
		return nil, common.ErrInternal
	}
	return created, nil
}

// AvatarURL returns a short-lived download URL for a user's avatar. The
// avatar must belong to the path-supplied user; a mismatch is a bad request.
// Any authenticated user may view avatars.
func (s *AttachmentService) AvatarURL(ctx context.Context, userID, avatarID string) (string, error) {
	a, err := s.repomanager.Attachments(s.db).GetAvatar(ctx, avatarID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrNotFound
		}
		return "", common.ErrInternal
	}
	if a.UserID != userID {
		return "", common.ErrBadRequest
	}

	url, err := s.blobs.PresignGet(ctx, a.Filename)
	if err != nil {
		return "", common.ErrInternal
	}
	return url, nil
}

func (s *AttachmentService) loadRecord(ctx context.Context, recordID string) (*models.Record, error) {
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

func (s *AttachmentService) getAttachment(ctx context.Context, id string) (*models.Attachment, error) {
	a, err := s.repomanager.Attachments(s.db).GetAttachment(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return a, nil
}
