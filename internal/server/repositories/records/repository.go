package records

import (
	"context"

	"github.com/ebalakin/costmate/internal/server/models"
)

// Repository is the persistence contract for records and their companion
// pivot rows. GetByID returns a row regardless of its state; visibility of
// deleted records is decided in the service layer.
type Repository interface {
	Create(ctx context.Context, record *models.Record) (*models.Record, error)
	GetByID(ctx context.Context, id string) (*models.Record, error)
	// ListVisible returns active records the user created or is a companion on.
	ListVisible(ctx context.Context, userID string) ([]*models.Record, error)
	Update(ctx context.Context, record *models.Record) error
	SetState(ctx context.Context, id string, state models.RecordState) error

	AddCompanion(ctx context.Context, recordID, userID string) error
	RemoveCompanion(ctx context.Context, recordID, userID string) error
	ListCompanionIDs(ctx context.Context, recordID string) ([]string, error)
}
