package attachments

import (
	"context"

	"github.com/ebalakin/costmate/internal/server/models"
)

// Repository is the persistence contract for attachment and avatar rows.
// The rows reference blobs in object storage by filename; blob lifecycle is
// handled by the service layer.
type Repository interface {
	CreateAttachment(ctx context.Context, a *models.Attachment) (*models.Attachment, error)
	GetAttachment(ctx context.Context, id string) (*models.Attachment, error)
	ListByRecord(ctx context.Context, recordID string) ([]*models.Attachment, error)
	DeleteAttachment(ctx context.Context, id string) error

	CreateAvatar(ctx context.Context, a *models.Avatar) (*models.Avatar, error)
	GetAvatar(ctx context.Context, id string) (*models.Avatar, error)
	GetAvatarByUser(ctx context.Context, userID string) (*models.Avatar, error)
	DeleteAvatar(ctx context.Context, id string) error
}
