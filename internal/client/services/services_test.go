package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ebalakin/costmate/internal/client/api"
	"github.com/ebalakin/costmate/internal/client/sanitize"
	"github.com/ebalakin/costmate/internal/client/storage"
	"github.com/stretchr/testify/require"
)

var dbSeq atomic.Int64

func newTestStores(t *testing.T) *Stores {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_tests_%d?mode=memory&cache=shared", dbSeq.Add(1))
	stores, err := OpenStores(context.Background(), dsn, "test-secret")
	require.NoError(t, err)
	stores.DB.SetMaxOpenConns(4)
	stores.DB.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = stores.Close() })
	return stores
}

// fakeClient implements api.Client with configurable behavior for the
// methods under test. Unconfigured methods fail loudly.
type fakeClient struct {
	loginFn       func(ctx context.Context, username, password, osName, timeZone string) (*api.AuthResult, error)
	signUpFn      func(ctx context.Context, p api.SignUpParams) (*api.AuthResult, error)
	logoutFn      func(ctx context.Context, osName, timeZone string) error
	listRecordsFn func(ctx context.Context) ([]api.Record, error)
	listFriendsFn func(ctx context.Context, userID string) ([]api.User, error)
}

var errUnexpectedCall = errors.New("unexpected api call")

func (f *fakeClient) SignUp(ctx context.Context, p api.SignUpParams) (*api.AuthResult, error) {
	if f.signUpFn == nil {
		return nil, errUnexpectedCall
	}
	return f.signUpFn(ctx, p)
}

func (f *fakeClient) Login(ctx context.Context, username, password, osName, timeZone string) (*api.AuthResult, error) {
	if f.loginFn == nil {
		return nil, errUnexpectedCall
	}
	return f.loginFn(ctx, username, password, osName, timeZone)
}

func (f *fakeClient) Logout(ctx context.Context, osName, timeZone string) error {
	if f.logoutFn == nil {
		return errUnexpectedCall
	}
	return f.logoutFn(ctx, osName, timeZone)
}

func (f *fakeClient) GetUser(context.Context, string) (*api.User, error) {
	return nil, errUnexpectedCall
}

func (f *fakeClient) UpdateUser(context.Context, string, api.ProfileParams) (*api.User, error) {
	return nil, errUnexpectedCall
}

func (f *fakeClient) SearchUsers(context.Context, string) ([]api.User, error) {
	return nil, errUnexpectedCall
}

func (f *fakeClient) SetAvatar(context.Context, string, []byte) (string, error) {
	return "", errUnexpectedCall
}

func (f *fakeClient) AvatarFile(context.Context, string, string) ([]byte, error) {
	return nil, errUnexpectedCall
}

func (f *fakeClient) ListFriends(ctx context.Context, userID string) ([]api.User, error) {
	if f.listFriendsFn == nil {
		return nil, errUnexpectedCall
	}
	return f.listFriendsFn(ctx, userID)
}

func (f *fakeClient) AddFriend(context.Context, string, string) (*api.User, error) {
	return nil, errUnexpectedCall
}

func (f *fakeClient) GetFriend(context.Context, string, string) (*api.User, error) {
	return nil, errUnexpectedCall
}

func (f *fakeClient) RemoveFriend(context.Context, string, string) error {
	return errUnexpectedCall
}

func (f *fakeClient) ListRecords(ctx context.Context) ([]api.Record, error) {
	if f.listRecordsFn == nil {
		return nil, errUnexpectedCall
	}
	return f.listRecordsFn(ctx)
}

func (f *fakeClient) CreateRecord(context.Context, api.RecordParams) (*api.Record, error) {
	return nil, errUnexpectedCall
}

func (f *fakeClient) GetRecord(context.Context, string) (*api.Record, error) {
	return nil, errUnexpectedCall
}

func (f *fakeClient) UpdateRecord(context.Context, string, api.RecordParams) (*api.Record, error) {
	return nil, errUnexpectedCall
}

func (f *fakeClient) DeleteRecord(context.Context, string) error {
	return errUnexpectedCall
}

func (f *fakeClient) AddCompanion(context.Context, string, string) error {
	return errUnexpectedCall
}

func (f *fakeClient) RemoveCompanion(context.Context, string, string) error {
	return errUnexpectedCall
}

func (f *fakeClient) UploadAttachment(context.Context, string, []byte) (string, error) {
	return "", errUnexpectedCall
}

func (f *fakeClient) AttachmentFile(context.Context, string, string) ([]byte, error) {
	return nil, errUnexpectedCall
}

func (f *fakeClient) DeleteAttachment(context.Context, string, string) error {
	return errUnexpectedCall
}

var _ api.Client = (*fakeClient)(nil)

func TestTokenStore_MissingToken(t *testing.T) {
	stores := newTestStores(t)
	ts := NewTokenStore(stores.Secure)

	_, err := ts.Token(context.Background())
	require.ErrorIs(t, err, sanitize.ErrMissingToken)
}

func TestAuthService_LoginPersistsSession(t *testing.T) {
	stores := newTestStores(t)
	client := &fakeClient{
		loginFn: func(ctx context.Context, username, password, osName, timeZone string) (*api.AuthResult, error) {
			require.Equal(t, "linux", osName)
			require.Equal(t, "UTC", timeZone)
			return &api.AuthResult{Token: "tok-1", User: api.User{ID: "u-1", Username: username}}, nil
		},
	}
	auth := NewAuthService(client, stores, "linux", "UTC")

	ctx := context.Background()
	user, err := auth.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	tok, err := NewTokenStore(stores.Secure).Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)

	current, err := auth.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "u-1", current.ID)
}

func TestAuthService_LoginWipesPassword(t *testing.T) {
	stores := newTestStores(t)
	client := &fakeClient{
		loginFn: func(ctx context.Context, username, password, osName, timeZone string) (*api.AuthResult, error) {
			return &api.AuthResult{Token: "tok-1", User: api.User{ID: "u-1"}}, nil
		},
	}
	auth := NewAuthService(client, stores, "linux", "UTC")

	password := []byte("secret")
	_, err := auth.Login(context.Background(), "alice", password)
	require.NoError(t, err)
	for _, b := range password {
		require.Zero(t, b, "password must be wiped after login")
	}
}

func TestAuthService_LogoutClearsLocalState(t *testing.T) {
	stores := newTestStores(t)
	client := &fakeClient{
		loginFn: func(ctx context.Context, username, password, osName, timeZone string) (*api.AuthResult, error) {
			return &api.AuthResult{Token: "tok-1", User: api.User{ID: "u-1"}}, nil
		},
		logoutFn: func(ctx context.Context, osName, timeZone string) error { return nil },
	}
	auth := NewAuthService(client, stores, "linux", "UTC")

	ctx := context.Background()
	_, err := auth.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx))

	_, err = NewTokenStore(stores.Secure).Token(ctx)
	require.ErrorIs(t, err, sanitize.ErrMissingToken)
	_, err = auth.CurrentUser(ctx)
	require.ErrorIs(t, err, sanitize.ErrMissingToken)
}

func TestAuthService_TransportFailedLogoutKeepsSession(t *testing.T) {
	stores := newTestStores(t)
	serverErr := &sanitize.Error{Kind: sanitize.KindNetworkFailure}
	client := &fakeClient{
		loginFn: func(ctx context.Context, username, password, osName, timeZone string) (*api.AuthResult, error) {
			return &api.AuthResult{Token: "tok-1", User: api.User{ID: "u-1"}}, nil
		},
		logoutFn: func(ctx context.Context, osName, timeZone string) error { return serverErr },
	}
	auth := NewAuthService(client, stores, "linux", "UTC")

	ctx := context.Background()
	_, err := auth.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)

	require.ErrorIs(t, auth.Logout(ctx), sanitize.ErrNetworkFailure)

	// The session survives so the user can retry once the network is back.
	tok, err := NewTokenStore(stores.Secure).Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)
}

func TestAuthService_RejectedLogoutClearsSession(t *testing.T) {
	for _, kind := range []sanitize.Kind{sanitize.KindUnauthorized, sanitize.KindNotFound} {
		stores := newTestStores(t)
		serverErr := &sanitize.Error{Kind: kind}
		client := &fakeClient{
			loginFn: func(ctx context.Context, username, password, osName, timeZone string) (*api.AuthResult, error) {
				return &api.AuthResult{Token: "tok-1", User: api.User{ID: "u-1"}}, nil
			},
			logoutFn: func(ctx context.Context, osName, timeZone string) error { return serverErr },
		}
		auth := NewAuthService(client, stores, "linux", "UTC")

		ctx := context.Background()
		_, err := auth.Login(ctx, "alice", []byte("secret"))
		require.NoError(t, err)

		// The server no longer honors the session, so the error surfaces but
		// the local copy must not linger.
		require.ErrorIs(t, auth.Logout(ctx), serverErr)

		_, err = NewTokenStore(stores.Secure).Token(ctx)
		require.ErrorIs(t, err, sanitize.ErrMissingToken)
		_, err = auth.CurrentUser(ctx)
		require.ErrorIs(t, err, sanitize.ErrMissingToken)
	}
}

func TestRecordService_ListCachesAndFallsBack(t *testing.T) {
	stores := newTestStores(t)
	online := true
	client := &fakeClient{
		listRecordsFn: func(ctx context.Context) ([]api.Record, error) {
			if !online {
				return nil, &sanitize.Error{Kind: sanitize.KindNetworkFailure}
			}
			return []api.Record{{ID: "r-1", Title: "Dinner"}}, nil
		},
	}
	records := NewRecordService(client, stores)

	ctx := context.Background()
	got, cached, err := records.List(ctx)
	require.NoError(t, err)
	require.False(t, cached)
	require.Len(t, got, 1)

	online = false
	got, cached, err = records.List(ctx)
	require.NoError(t, err)
	require.True(t, cached)
	require.Len(t, got, 1)
	require.Equal(t, "r-1", got[0].ID)
}

func TestRecordService_ListDoesNotMaskServerErrors(t *testing.T) {
	stores := newTestStores(t)
	calls := 0
	client := &fakeClient{
		listRecordsFn: func(ctx context.Context) ([]api.Record, error) {
			calls++
			if calls == 1 {
				return []api.Record{{ID: "r-1"}}, nil
			}
			return nil, &sanitize.Error{Kind: sanitize.KindUnauthorized}
		},
	}
	records := NewRecordService(client, stores)

	ctx := context.Background()
	_, _, err := records.List(ctx)
	require.NoError(t, err)

	// A revoked session must surface, even with a warm cache.
	got, cached, err := records.List(ctx)
	require.ErrorIs(t, err, sanitize.ErrUnauthorized)
	require.False(t, cached)
	require.Nil(t, got)
}

func TestFriendService_ListCachesAndFallsBack(t *testing.T) {
	stores := newTestStores(t)
	online := true
	client := &fakeClient{
		loginFn: func(ctx context.Context, username, password, osName, timeZone string) (*api.AuthResult, error) {
			return &api.AuthResult{Token: "tok-1", User: api.User{ID: "u-1"}}, nil
		},
		listFriendsFn: func(ctx context.Context, userID string) ([]api.User, error) {
			require.Equal(t, "u-1", userID)
			if !online {
				return nil, &sanitize.Error{Kind: sanitize.KindNetworkFailure}
			}
			return []api.User{{ID: "u-2", Username: "bob"}}, nil
		},
	}
	auth := NewAuthService(client, stores, "linux", "UTC")
	friends := NewFriendService(client, stores, auth)

	ctx := context.Background()
	_, err := auth.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)

	got, cached, err := friends.List(ctx)
	require.NoError(t, err)
	require.False(t, cached)
	require.Len(t, got, 1)

	online = false
	got, cached, err = friends.List(ctx)
	require.NoError(t, err)
	require.True(t, cached)
	require.Equal(t, "bob", got[0].Username)
}

func TestFriendService_ListDoesNotMaskServerErrors(t *testing.T) {
	stores := newTestStores(t)
	calls := 0
	client := &fakeClient{
		loginFn: func(ctx context.Context, username, password, osName, timeZone string) (*api.AuthResult, error) {
			return &api.AuthResult{Token: "tok-1", User: api.User{ID: "u-1"}}, nil
		},
		listFriendsFn: func(ctx context.Context, userID string) ([]api.User, error) {
			calls++
			if calls == 1 {
				return []api.User{{ID: "u-2", Username: "bob"}}, nil
			}
			return nil, &sanitize.Error{Kind: sanitize.KindUnauthorized}
		},
	}
	auth := NewAuthService(client, stores, "linux", "UTC")
	friends := NewFriendService(client, stores, auth)

	ctx := context.Background()
	_, err := auth.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)

	_, _, err = friends.List(ctx)
	require.NoError(t, err)

	got, cached, err := friends.List(ctx)
	require.ErrorIs(t, err, sanitize.ErrUnauthorized)
	require.False(t, cached)
	require.Nil(t, got)
}

func TestOpenStores_SaltIsStable(t *testing.T) {
	dsn := fmt.Sprintf("file:svc_salt_%d?mode=memory&cache=shared", dbSeq.Add(1))

	ctx := context.Background()
	first, err := OpenStores(ctx, dsn, "secret")
	require.NoError(t, err)
	require.NoError(t, first.Secure.Save(ctx, storage.KeyAuthToken, []byte("tok-1")))

	// Reopening with the same secret derives the same key, so the sealed
	// value stays readable.
	second, err := OpenStores(ctx, dsn, "secret")
	require.NoError(t, err)
	got, err := second.Secure.Get(ctx, storage.KeyAuthToken)
	require.NoError(t, err)
	require.Equal(t, []byte("tok-1"), got)

	_ = first.Close()
	_ = second.Close()
}
