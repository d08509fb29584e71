package models

import "time"

// Attachment links a record to a blob in object storage. Filename is the
// server-generated storage key; clients only ever see the attachment ID and
// construct a download URL from it.
type Attachment struct {
	ID        string
	RecordID  string
	Filename  string
	CreatedAt time.Time
}

// Avatar links a user to their profile image blob. A user has at most one;
// replacing it deletes the previous blob best-effort.
type Avatar struct {
	ID        string
	UserID    string
	Filename  string
	CreatedAt time.Time
}
