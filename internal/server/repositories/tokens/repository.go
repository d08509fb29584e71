package tokens

import (
	"context"

	"github.com/ebalakin/costmate/internal/server/models"
)

// Repository is the persistence contract for bearer tokens. Tokens are never
// deleted; Revoke flips the one-way revoked flag.
type Repository interface {
	Create(ctx context.Context, token *models.Token) (*models.Token, error)
	FindByValue(ctx context.Context, value string) (*models.Token, error)
	// FindActive returns the non-revoked token for the given
	// (user, OS name, time zone) triple, or common.ErrNotFound.
	FindActive(ctx context.Context, userID, osName, timeZone string) (*models.Token, error)
	Revoke(ctx context.Context, id string) error
}
