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

// FriendService wraps the friendship endpoints for the logged-in user and
// caches the friend list the same way RecordService caches records.
type FriendService struct {
	client api.Client
	stores *Stores
	auth   *AuthService
}

// NewFriendService constructs a FriendService.
func NewFriendService(client api.Client, stores *Stores, auth *AuthService) *FriendService {
	return &FriendService{client: client, stores: stores, auth: auth}
}

// List fetches the logged-in user's friends and caches them, falling back
// to the cache when the server is unreachable. As with records, only a
// transport failure triggers the fallback; server-side errors are surfaced.
func (s *FriendService) List(ctx context.Context) (friends []api.User, cached bool, err error) {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, false, err
	}

	friends, err = s.client.ListFriends(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, sanitize.ErrNetworkFailure) {
			return nil, false, err
		}
		cachedFriends, cacheErr := s.cachedList(ctx)
		if cacheErr != nil {
			return nil, false, err
		}
		return cachedFriends, true, nil
	}

	if value, marshalErr := json.Marshal(friends); marshalErr == nil {
		_ = s.stores.Plain.Save(ctx, storage.KeyCachedFriends, value)
	}
	return friends, false, nil
}

func (s *FriendService) cachedList(ctx context.Context) ([]api.User, error) {
	value, err := s.stores.Plain.Get(ctx, storage.KeyCachedFriends)
	if errors.Is(err, common.ErrNotFound) {
		return []api.User{}, nil
	}
	if err != nil {
		return nil, err
	}

	var friends []api.User
	if err := json.Unmarshal(value, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

// Search finds users by username fragment.
func (s *FriendService) Search(ctx context.Context, query string) ([]api.User, error) {
	return s.client.SearchUsers(ctx, query)
}

// Add records a friendship from the logged-in user to friendID.
func (s *FriendService) Add(ctx context.Context, friendID string) (*api.User, error) {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.AddFriend(ctx, user.ID, friendID)
}

// Get checks a single friendship. Absent friendships surface as not found.
func (s *FriendService) Get(ctx context.Context, friendID string) (*api.User, error) {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetFriend(ctx, user.ID, friendID)
}

// Remove deletes a friendship.
func (s *FriendService) Remove(ctx context.Context, friendID string) error {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return s.client.RemoveFriend(ctx, user.ID, friendID)
}
