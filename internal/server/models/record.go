package models

import "time"

// RecordState is the record lifecycle tag. A deleted record stays in storage
// but is invisible to every read, including the creator's.
type RecordState string

const (
	RecordStateActive  RecordState = "active"
	RecordStateDeleted RecordState = "deleted"
)

// Record is a single financial/mood entry owned by CreatorID. Companions are
// the users the record is shared with (a many-to-many pivot).
type Record struct {
	ID         string
	CreatorID  string
	Title      string
	Note       string
	OccurredOn time.Time
	Amount     float64
	Currency   string
	Mood       int
	State      RecordState
	CreatedAt  time.Time

	CompanionIDs []string
	Attachments  []Attachment
}
