package models

import "time"

// Token is an opaque bearer credential. Tokens are never deleted: logout sets
// Revoked, a one-way transition. OSName and TimeZone scope a token to the
// device that requested it, so a login from the same device reuses the active
// token instead of minting a new one.
type Token struct {
	ID        string
	UserID    string
	Token     string
	Revoked   bool
	OSName    string
	TimeZone  string
	CreatedAt time.Time
}
