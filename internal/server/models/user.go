// Package models defines the server-side domain entities persisted in
// PostgreSQL. These are plain structs; wire-level DTOs live in httpapi.
package models

import "time"

// User is an account holder. Username and PasswordHash are immutable through
// the profile-update path; only names and email may change there.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	CreatedAt    time.Time
}
