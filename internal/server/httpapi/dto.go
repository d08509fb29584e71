package httpapi

import (
	"time"

	"github.com/ebalakin/costmate/internal/server/models"
	"github.com/go-playground/validator/v10"
)

// Wire DTOs. Field names are snake_case; dates are RFC 3339 both directions.

var validate = validator.New()

type signUpRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=128"`
	LastName  string `json:"last_name" validate:"max=128"`
	Email     string `json:"email" validate:"omitempty,email"`
	OSName    string `json:"os_name"`
	TimeZone  string `json:"time_zone"`
}

type loginRequest struct {
	OSName   string `json:"os_name"`
	TimeZone string `json:"time_zone"`
}

type logoutRequest struct {
	OSName   string `json:"os_name"`
	TimeZone string `json:"time_zone"`
}

type updateUserRequest struct {
	FirstName string `json:"first_name" validate:"max=128"`
	LastName  string `json:"last_name" validate:"max=128"`
	Email     string `json:"email" validate:"omitempty,email"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type recordRequest struct {
	Title        string    `json:"title" validate:"required,max=256"`
	Note         string    `json:"note"`
	OccurredOn   time.Time `json:"occurred_on" validate:"required"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency" validate:"required,len=3"`
	Mood         int       `json:"mood" validate:"min=0,max=5"`
	CompanionIDs []string  `json:"companion_ids" validate:"dive,uuid"`
}

type recordResponse struct {
	ID           string          `json:"id"`
	CreatorID    string          `json:"creator_id"`
	Title        string          `json:"title"`
	Note         string          `json:"note"`
	OccurredOn   time.Time       `json:"occurred_on"`
	Amount       float64         `json:"amount"`
	Currency     string          `json:"currency"`
	Mood         int             `json:"mood"`
	CompanionIDs []string        `json:"companion_ids,omitempty"`
	Assets       []assetResponse `json:"assets,omitempty"`
}

// assetResponse exposes only the attachment identifier; clients build a
// download URL from it without learning internal storage keys.
type assetResponse struct {
	ID string `json:"id"`
}

type addFriendRequest struct {
	FriendID string `json:"friend_id" validate:"required,uuid"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

func toUserResponses(users []*models.User) []userResponse {
	result := make([]userResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	return result
}

func toRecordResponse(r *models.Record) recordResponse {
	resp := recordResponse{
		ID:           r.ID,
		CreatorID:    r.CreatorID,
		Title:        r.Title,
		Note:         r.Note,
		OccurredOn:   r.OccurredOn,
		Amount:       r.Amount,
		Currency:     r.Currency,
		Mood:         r.Mood,
		CompanionIDs: r.CompanionIDs,
	}
	for _, a := range r.Attachments {
		resp.Assets = append(resp.Assets, assetResponse{ID: a.ID})
	}
	return resp
}
