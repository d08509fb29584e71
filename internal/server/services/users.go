// Package services contains server-side business logic. This file implements
// UserService: sign-up, basic-auth login, bearer authentication, the token
// lifecycle (reuse / mint / one-way revocation), and profile operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ebalakin/costmate/internal/common"
	"github.com/ebalakin/costmate/internal/dbx"
	"github.com/ebalakin/costmate/internal/server/events"
	"github.com/ebalakin/costmate/internal/server/models"
	"github.com/ebalakin/costmate/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const searchLimit = 25

// tokenValueBytes is the entropy of an opaque token; the hex value is twice
// this length.
const tokenValueBytes = 32

// SignUpParams carries the fields required to create an account.
type SignUpParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	OSName    string
	TimeZone  string
}

// UserService provides account and token operations.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   events.Publisher
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, pub events.Publisher) *UserService {
	return &UserService{db: db, repomanager: m, publisher: pub}
}

// SignUp creates a user with a bcrypt-hashed password and mints their first
// token, both inside one transaction. A taken username yields
// common.ErrAlreadyExists.
func (s *UserService) SignUp(ctx context.Context, p SignUpParams) (*models.User, *models.Token, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, common.ErrInternal
	}

	user := &models.User{
		Username:     p.Username,
		PasswordHash: string(hash),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
	}

	var token *models.Token
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		token, err = s.mintToken(ctx, tx, user.ID, p.OSName, p.TimeZone)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, nil, common.ErrAlreadyExists
		}
		return nil, nil, fmt.Errorf("sign up: %w", err)
	}

	s.publisher.Publish(ctx, events.UserSignedUp, events.UserPayload{UserID: user.ID, Username: user.Username})
	return user, token, nil
}

// AuthenticateBasic verifies a username/password pair. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) AuthenticateBasic(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

// AuthenticateToken resolves a bearer token value to its principal. Unknown
// and revoked tokens both yield common.ErrInvalidToken so callers cannot
// probe token existence.
func (s *UserService) AuthenticateToken(ctx context.Context, value string) (*models.User, *models.Token, error) {
	token, err := s.repomanager.Tokens(s.db).FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrInvalidToken
		}
		return nil, nil, common.ErrInternal
	}
	if token.Revoked {
		return nil, nil, common.ErrInvalidToken
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		return nil, nil, common.ErrInternal
	}
	return user, token, nil
}

// Login returns the user's active token for the (OS name, time zone) pair,
// minting a new one only when no active token is scoped to that device.
// The caller must have passed basic authentication first.
func (s *UserService) Login(ctx context.Context, user *models.User, osName, timeZone string) (*models.Token, error) {
	existing, err := s.repomanager.Tokens(s.db).FindActive(ctx, user.ID, osName, timeZone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInternal
	}
	return s.mintToken(ctx, s.db, user.ID, osName, timeZone)
}

// Logout revokes exactly the token that authenticated the request, but only
// when the request body's (OS name, time zone) match that token. A mismatch
// yields common.ErrNotFound and leaves the token active.
func (s *UserService) Logout(ctx context.Context, token *models.Token, osName, timeZone string) error {
	if token.OSName != osName || token.TimeZone != timeZone {
		return common.ErrNotFound
	}
	if err := s.repomanager.Tokens(s.db).Revoke(ctx, token.ID); err != nil {
		return common.ErrInternal
	}
	return nil
}

// GetUser returns the target user's profile. Self-access only.
func (s *UserService) GetUser(ctx context.Context, principalID, targetID string) (*models.User, error) {
	if err := authorizeSelf(principalID, targetID); err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// UpdateProfile changes the target user's names and email. Self-access only;
// username and password are immutable through this path.
func (s *UserService) UpdateProfile(ctx context.Context, principalID, targetID, firstName, lastName, email string) (*models.User, error) {
	if err := authorizeSelf(principalID, targetID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.Email = email
	if err := repo.UpdateProfile(ctx, user); err != nil {
		return nil, common.ErrInternal
	}
	return user, nil
}

// Search returns users matching the query string.
func (s *UserService) Search(ctx context.Context, query string) ([]*models.User, error) {
	result, err := s.repomanager.Users(s.db).Search(ctx, query, searchLimit)
	if err != nil {
		return nil, common.ErrInternal
	}
	return result, nil
}

func (s *UserService) mintToken(ctx context.Context, db dbx.DBTX, userID, osName, timeZone string) (*models.Token, error) {
	value, err := common.MakeRandHexString(tokenValueBytes)
	if err != nil {
		return nil, common.ErrInternal
	}
	token := &models.Token{UserID: userID, Token: value, OSName: osName, TimeZone: timeZone}
	created, err := s.repomanager.Tokens(db).Create(ctx, token)
	if err != nil {
		return nil, common.ErrInternal
	}
	return created, nil
}
