package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ebalakin/costmate/internal/common"
	"github.com/ebalakin/costmate/internal/server/events"
	"github.com/ebalakin/costmate/internal/server/models"
	"github.com/ebalakin/costmate/internal/server/repositories/repomanager"
)

// FriendService manages the friendship pivot. All operations are scoped to
// the principal's own friend list.
type FriendService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   events.Publisher
}

// NewFriendService constructs a FriendService.
func NewFriendService(db *sql.DB, m repomanager.RepositoryManager, pub events.Publisher) *FriendService {
	return &FriendService{db: db, repomanager: m, publisher: pub}
}

// List returns the target user's friends. Self-access only.
func (s *FriendService) List(ctx context.Context, principalID, targetID string) ([]*models.User, error) {
	if err := authorizeSelf(principalID, targetID); err != nil {
		return nil, err
	}
	result, err := s.repomanager.Friendships(s.db).ListFriends(ctx, targetID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return result, nil
}

// Add creates a friendship from the target user to friendID. Self-access
// only; befriending oneself or an unknown user is a bad request.
func (s *FriendService) Add(ctx context.Context, principalID, targetID, friendID string) (*models.User, error) {
	if err := authorizeSelf(principalID, targetID); err != nil {
		return nil, err
	}
	if friendID == targetID {
		return nil, common.ErrBadRequest
	}

	friend, err := s.repomanager.Users(s.db).GetByID(ctx, friendID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	if err := s.repomanager.Friendships(s.db).Create(ctx, targetID, friendID); err != nil {
		return nil, common.ErrInternal
	}

	s.publisher.Publish(ctx, events.FriendAdded, events.FriendPayload{PersonID: targetID, FriendID: friendID})
	return friend, nil
}

// Get returns one friend of the target user. The friendship row is the sole
// authority: its absence is ErrNotFound even if the user exists.
func (s *FriendService) Get(ctx context.Context, principalID, targetID, friendID string) (*models.User, error) {
	if err := authorizeSelf(principalID, targetID); err != nil {
		return nil, err
	}

	ok, err := s.repomanager.Friendships(s.db).Exists(ctx, targetID, friendID)
	if err != nil {
		return nil, common.ErrInternal
	}
	if !ok {
		return nil, common.ErrNotFound
	}

	friend, err := s.repomanager.Users(s.db).GetByID(ctx, friendID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return friend, nil
}

// Remove detaches friendID from the target user's friend list. Absence of the
// friendship is ErrNotFound.
func (s *FriendService) Remove(ctx context.Context, principalID, targetID, friendID string) error {
	if err := authorizeSelf(principalID, targetID); err != nil {
		return err
	}
	err := s.repomanager.Friendships(s.db).Delete(ctx, targetID, friendID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}
	return nil
}
