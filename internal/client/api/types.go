package api

import "time"

// Wire types mirror the server's DTOs: snake_case fields, RFC 3339 dates.

// SignUpParams carries everything POST /users/signup accepts.
type SignUpParams struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	OSName    string `json:"os_name"`
	TimeZone  string `json:"time_zone"`
}

// ProfileParams carries the mutable profile fields for PUT /users/:id.
type ProfileParams struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// User is the server's user projection.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// AuthResult is returned by signup and login: the session token plus the
// authenticated user.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Asset identifies an uploaded attachment or avatar. Only the identifier
// crosses the wire; file bytes are fetched through the /file endpoints.
type Asset struct {
	ID string `json:"id"`
}

// Record is the server's record projection.
type Record struct {
	ID           string    `json:"id"`
	CreatorID    string    `json:"creator_id"`
	Title        string    `json:"title"`
	Note         string    `json:"note"`
	OccurredOn   time.Time `json:"occurred_on"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Mood         int       `json:"mood"`
	CompanionIDs []string  `json:"companion_ids,omitempty"`
	Assets       []Asset   `json:"assets,omitempty"`
}

// RecordParams is the request body for creating and updating records.
type RecordParams struct {
	Title        string    `json:"title"`
	Note         string    `json:"note"`
	OccurredOn   time.Time `json:"occurred_on"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Mood         int       `json:"mood"`
	CompanionIDs []string  `json:"companion_ids"`
}
