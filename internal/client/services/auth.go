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

// TokenStore adapts the secure store to the facade's TokenSource. A missing
// token surfaces as sanitize.ErrMissingToken so authenticated calls fail
// before any network I/O.
type TokenStore struct {
	secure storage.Store
}

// NewTokenStore wraps the secure store.
func NewTokenStore(secure storage.Store) *TokenStore {
	return &TokenStore{secure: secure}
}

var _ api.TokenSource = (*TokenStore)(nil)

func (t *TokenStore) Token(ctx context.Context) (string, error) {
	value, err := t.secure.Get(ctx, storage.KeyAuthToken)
	if errors.Is(err, common.ErrNotFound) {
		return "", sanitize.ErrMissingToken
	}
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// AuthService manages the session lifecycle: signup, login, logout, and the
// locally cached identity.
type AuthService struct {
	client api.Client
	stores *Stores
	osName string
	tz     string
}

// NewAuthService constructs an AuthService bound to the device scope
// (osName, timeZone) every session call reports.
func NewAuthService(client api.Client, stores *Stores, osName, timeZone string) *AuthService {
	return &AuthService{client: client, stores: stores, osName: osName, tz: timeZone}
}

// SignUp registers an account and persists the returned session.
func (s *AuthService) SignUp(ctx context.Context, p api.SignUpParams) (*api.User, error) {
	p.OSName = s.osName
	p.TimeZone = s.tz

	result, err := s.client.SignUp(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.saveSession(ctx, result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// Login authenticates with basic credentials and persists the returned
// session. The password slice is wiped before returning.
func (s *AuthService) Login(ctx context.Context, username string, password []byte) (*api.User, error) {
	defer common.WipeByteArray(password)

	result, err := s.client.Login(ctx, username, string(password), s.osName, s.tz)
	if err != nil {
		return nil, err
	}
	if err := s.saveSession(ctx, result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// Logout revokes the session server-side first, then clears local state.
// Local state survives a transport failure so the user can retry. When the
// server answers unauthorized or not found the session is already dead
// there, so the local copy is cleared too; the error still surfaces.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx, s.osName, s.tz)
	if err != nil {
		if !errors.Is(err, sanitize.ErrUnauthorized) && !errors.Is(err, sanitize.ErrNotFound) {
			return err
		}
		if clearErr := s.clearSession(ctx); clearErr != nil {
			return clearErr
		}
		return err
	}
	return s.clearSession(ctx)
}

// CurrentUser returns the cached identity, or sanitize.ErrMissingToken when
// nobody is logged in.
func (s *AuthService) CurrentUser(ctx context.Context) (*api.User, error) {
	value, err := s.stores.Plain.Get(ctx, storage.KeyCurrentUser)
	if errors.Is(err, common.ErrNotFound) {
		return nil, sanitize.ErrMissingToken
	}
	if err != nil {
		return nil, err
	}

	var user api.User
	if err := json.Unmarshal(value, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the names and email of the logged-in user and
// refreshes the cached identity.
func (s *AuthService) UpdateProfile(ctx context.Context, p api.ProfileParams) (*api.User, error) {
	current, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.client.UpdateUser(ctx, current.ID, p)
	if err != nil {
		return nil, err
	}

	value, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Plain.Save(ctx, storage.KeyCurrentUser, value); err != nil {
		return nil, err
	}
	return user, nil
}

// SetAvatar uploads avatar bytes for the given user and returns the asset id.
func (s *AuthService) SetAvatar(ctx context.Context, userID string, data []byte) (string, error) {
	return s.client.SetAvatar(ctx, userID, data)
}

func (s *AuthService) saveSession(ctx context.Context, result *api.AuthResult) error {
	if err := s.stores.Secure.Save(ctx, storage.KeyAuthToken, []byte(result.Token)); err != nil {
		return err
	}
	user, err := json.Marshal(result.User)
	if err != nil {
		return err
	}
	return s.stores.Plain.Save(ctx, storage.KeyCurrentUser, user)
}

func (s *AuthService) clearSession(ctx context.Context) error {
	if err := s.stores.Secure.Delete(ctx, storage.KeyAuthToken); err != nil {
		return err
	}
	if err := s.stores.Plain.Delete(ctx, storage.KeyCurrentUser); err != nil {
		return err
	}
	if err := s.stores.Plain.Delete(ctx, storage.KeyCachedRecords); err != nil {
		return err
	}
	return s.stores.Plain.Delete(ctx, storage.KeyCachedFriends)
}
