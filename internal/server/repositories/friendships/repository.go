package friendships

import (
	"context"

	"github.com/ebalakin/costmate/internal/server/models"
)

// Repository is the persistence contract for the directed friendship pivot.
type Repository interface {
	Create(ctx context.Context, personID, friendID string) error
	// Exists reports whether friendID is a friend of personID.
	Exists(ctx context.Context, personID, friendID string) (bool, error)
	// Delete removes the (person, friend) row. Returns common.ErrNotFound if
	// no such friendship exists.
	Delete(ctx context.Context, personID, friendID string) error
	// ListFriends returns the user rows of personID's friends.
	ListFriends(ctx context.Context, personID string) ([]*models.User, error)
}
