package services

import (
	"errors"

	"github.com/ebalakin/costmate/internal/common"
	"github.com/ebalakin/costmate/internal/server/models"
)

// Authorization predicates. These run after authentication and before any
// mutation; every handler path goes through the same functions so the status
// mapping stays consistent across endpoints.

// authorizeSelf requires the principal to be the target user.
func authorizeSelf(principalID, targetUserID string) error {
	if principalID != targetUserID {
		return common.ErrUnauthorized
	}
	return nil
}

// authorizeRecordOwner requires the principal to be the record's creator.
func authorizeRecordOwner(principalID string, rec *models.Record) error {
	if principalID != rec.CreatorID {
		return common.ErrUnauthorized
	}
	return nil
}

// requireVisible hides soft-deleted records from every reader, including the
// creator.
func requireVisible(rec *models.Record) error {
	if rec.State == models.RecordStateDeleted {
		return common.ErrNotFound
	}
	return nil
}

// requireAttachmentParent checks that the attachment's stored parent matches
// the path-supplied record. A mismatch is a malformed request, not a privilege
// violation.
func requireAttachmentParent(a *models.Attachment, recordID string) error {
	if a.RecordID != recordID {
		return common.ErrBadRequest
	}
	return nil
}

// canViewRecord allows the creator and companions through; everyone else gets
// ErrUnauthorized.
func canViewRecord(principalID string, rec *models.Record) error {
	if principalID == rec.CreatorID {
		return nil
	}
	for _, id := range rec.CompanionIDs {
		if id == principalID {
			return nil
		}
	}
	return common.ErrUnauthorized
}

// IsAuthError reports whether err maps to an HTTP 401.
func IsAuthError(err error) bool {
	return errors.Is(err, common.ErrUnauthorized) || errors.Is(err, common.ErrInvalidToken)
}
