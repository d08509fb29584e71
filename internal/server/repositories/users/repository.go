package users

import (
	"context"

	"github.com/ebalakin/costmate/internal/server/models"
)

// Repository is the persistence contract for user accounts.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// UpdateProfile changes names and email only. Username and password are
	// immutable through this path.
	UpdateProfile(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query string, limit int) ([]*models.User, error)
}
