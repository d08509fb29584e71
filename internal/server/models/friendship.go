package models

import "time"

// Friendship is a directed (person, friend) pivot row. It is the sole
// authority for "is X a friend of Y".
type Friendship struct {
	PersonID  string
	FriendID  string
	CreatedAt time.Time
}
