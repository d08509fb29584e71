package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ebalakin/costmate/internal/common"
	"github.com/ebalakin/costmate/internal/dbx"
	"github.com/ebalakin/costmate/internal/logging"
	"github.com/ebalakin/costmate/internal/server/models"
	attachmentsrepo "github.com/ebalakin/costmate/internal/server/repositories/attachments"
	friendshipsrepo "github.com/ebalakin/costmate/internal/server/repositories/friendships"
	recordsrepo "github.com/ebalakin/costmate/internal/server/repositories/records"
	tokensrepo "github.com/ebalakin/costmate/internal/server/repositories/tokens"
	usersrepo "github.com/ebalakin/costmate/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// --- in-memory repositories ---

type memUsersRepo struct {
	seq   int
	byID  map[string]*models.User
	byUsr map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byID: map[string]*models.User{}, byUsr: map[string]*models.User{}}
}

func (r *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, taken := r.byUsr[u.Username]; taken {
		return nil, common.ErrAlreadyExists
	}
	r.seq++
	copied := *u
	copied.ID = fmt.Sprintf("u-%d", r.seq)
	r.byID[copied.ID] = &copied
	r.byUsr[copied.Username] = &copied
	return &copied, nil
}

func (r *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := r.byUsr[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUsersRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	stored, ok := r.byID[u.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.FirstName = u.FirstName
	stored.LastName = u.LastName
	stored.Email = u.Email
	return nil
}

func (r *memUsersRepo) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	var result []*models.User
	for _, u := range r.byID {
		copied := *u
		result = append(result, &copied)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

type memTokensRepo struct {
	seq  int
	byID map[string]*models.Token
}

func newMemTokensRepo() *memTokensRepo {
	return &memTokensRepo{byID: map[string]*models.Token{}}
}

func (r *memTokensRepo) Create(ctx context.Context, token *models.Token) (*models.Token, error) {
	r.seq++
	copied := *token
	copied.ID = fmt.Sprintf("t-%d", r.seq)
	r.byID[copied.ID] = &copied
	returned := copied
	return &returned, nil
}

func (r *memTokensRepo) FindByValue(ctx context.Context, value string) (*models.Token, error) {
	for _, tok := range r.byID {
		if tok.Token == value {
			copied := *tok
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memTokensRepo) FindActive(ctx context.Context, userID, osName, timeZone string) (*models.Token, error) {
	for _, tok := range r.byID {
		if tok.UserID == userID && tok.OSName == osName && tok.TimeZone == timeZone && !tok.Revoked {
			copied := *tok
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memTokensRepo) Revoke(ctx context.Context, id string) error {
	tok, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	tok.Revoked = true
	return nil
}

type memRecordsRepo struct {
	seq        int
	byID       map[string]*models.Record
	companions map[string][]string
}

func newMemRecordsRepo() *memRecordsRepo {
	return &memRecordsRepo{byID: map[string]*models.Record{}, companions: map[string][]string{}}
}

func (r *memRecordsRepo) Create(ctx context.Context, rec *models.Record) (*models.Record, error) {
	r.seq++
	copied := *rec
	copied.ID = fmt.Sprintf("r-%d", r.seq)
	r.byID[copied.ID] = &copied
	returned := copied
	return &returned, nil
}

func (r *memRecordsRepo) GetByID(ctx context.Context, id string) (*models.Record, error) {
	rec, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *memRecordsRepo) ListVisible(ctx context.Context, userID string) ([]*models.Record, error) {
	var result []*models.Record
	for _, rec := range r.byID {
		if rec.State != models.RecordStateActive {
			continue
		}
		visible := rec.CreatorID == userID
		for _, id := range r.companions[rec.ID] {
			if id == userID {
				visible = true
			}
		}
		if visible {
			copied := *rec
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memRecordsRepo) Update(ctx context.Context, rec *models.Record) error {
	stored, ok := r.byID[rec.ID]
	if !ok {
		return common.ErrNotFound
	}
	copied := *rec
	*stored = copied
	return nil
}

func (r *memRecordsRepo) SetState(ctx context.Context, id string, state models.RecordState) error {
	rec, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	rec.State = state
	return nil
}

func (r *memRecordsRepo) AddCompanion(ctx context.Context, recordID, userID string) error {
	r.companions[recordID] = append(r.companions[recordID], userID)
	return nil
}

func (r *memRecordsRepo) RemoveCompanion(ctx context.Context, recordID, userID string) error {
	ids := r.companions[recordID]
	for i, id := range ids {
		if id == userID {
			r.companions[recordID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *memRecordsRepo) ListCompanionIDs(ctx context.Context, recordID string) ([]string, error) {
	return append([]string(nil), r.companions[recordID]...), nil
}

type memFriendshipsRepo struct {
	users   *memUsersRepo
	friends map[string][]string
}

func newMemFriendshipsRepo(users *memUsersRepo) *memFriendshipsRepo {
	return &memFriendshipsRepo{users: users, friends: map[string][]string{}}
}

func (r *memFriendshipsRepo) Create(ctx context.Context, personID, friendID string) error {
	r.friends[personID] = append(r.friends[personID], friendID)
	return nil
}

func (r *memFriendshipsRepo) Exists(ctx context.Context, personID, friendID string) (bool, error) {
	for _, id := range r.friends[personID] {
		if id == friendID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memFriendshipsRepo) Delete(ctx context.Context, personID, friendID string) error {
	ids := r.friends[personID]
	for i, id := range ids {
		if id == friendID {
			r.friends[personID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *memFriendshipsRepo) ListFriends(ctx context.Context, personID string) ([]*models.User, error) {
	var result []*models.User
	for _, id := range r.friends[personID] {
		u, err := r.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, nil
}

type memAttachmentsRepo struct {
	seq     int
	byID    map[string]*models.Attachment
	avatars map[string]*models.Avatar

	createAttachmentErr error
}

func newMemAttachmentsRepo() *memAttachmentsRepo {
	return &memAttachmentsRepo{byID: map[string]*models.Attachment{}, avatars: map[string]*models.Avatar{}}
}

func (r *memAttachmentsRepo) CreateAttachment(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	if r.createAttachmentErr != nil {
		return nil, r.createAttachmentErr
	}
	r.seq++
	copied := *a
	copied.ID = fmt.Sprintf("a-%d", r.seq)
	r.byID[copied.ID] = &copied
	returned := copied
	return &returned, nil
}

func (r *memAttachmentsRepo) GetAttachment(ctx context.Context, id string) (*models.Attachment, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *memAttachmentsRepo) ListByRecord(ctx context.Context, recordID string) ([]*models.Attachment, error) {
	var result []*models.Attachment
	for _, a := range r.byID {
		if a.RecordID == recordID {
			copied := *a
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memAttachmentsRepo) DeleteAttachment(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memAttachmentsRepo) CreateAvatar(ctx context.Context, a *models.Avatar) (*models.Avatar, error) {
	r.seq++
	copied := *a
	copied.ID = fmt.Sprintf("av-%d", r.seq)
	r.avatars[copied.ID] = &copied
	returned := copied
	return &returned, nil
}

func (r *memAttachmentsRepo) GetAvatar(ctx context.Context, id string) (*models.Avatar, error) {
	a, ok := r.avatars[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *memAttachmentsRepo) GetAvatarByUser(ctx context.Context, userID string) (*models.Avatar, error) {
	for _, a := range r.avatars {
		if a.UserID == userID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memAttachmentsRepo) DeleteAvatar(ctx context.Context, id string) error {
	if _, ok := r.avatars[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.avatars, id)
	return nil
}

// --- repomanager fake ---

type fakeRepoManager struct {
	users       *memUsersRepo
	tokens      *memTokensRepo
	records     *memRecordsRepo
	friendships *memFriendshipsRepo
	attachments *memAttachmentsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	users := newMemUsersRepo()
	return &fakeRepoManager{
		users:       users,
		tokens:      newMemTokensRepo(),
		records:     newMemRecordsRepo(),
		friendships: newMemFriendshipsRepo(users),
		attachments: newMemAttachmentsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error          { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                   { return m.users }
func (m *fakeRepoManager) Tokens(dbx.DBTX) tokensrepo.Repository                 { return m.tokens }
func (m *fakeRepoManager) Records(dbx.DBTX) recordsrepo.Repository               { return m.records }
func (m *fakeRepoManager) Friendships(dbx.DBTX) friendshipsrepo.Repository       { return m.friendships }
func (m *fakeRepoManager) Attachments(dbx.DBTX) attachmentsrepo.Repository       { return m.attachments }

// --- event recorder ---

type recordingPublisher struct {
	subjects []string
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, payload any) {
	p.subjects = append(p.subjects, subject)
}

// --- blob store fake ---

type fakeBlobStore struct {
	blobs      map[string][]byte
	deleted    []string
	presignURL string

	putErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}, presignURL: "https://blobs.test/presigned"}
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.blobs[key] = data
	return nil
}

func (f *fakeBlobStore) PresignGet(ctx context.Context, key string) (string, error) {
	return f.presignURL, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	delete(f.blobs, key)
	f.deleted = append(f.deleted, key)
	return nil
}

// nopLogger discards log output in tests.
func nopLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
