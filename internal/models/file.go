package models

import "time"

// File is one metadata row in the files table. The physical blob lives
// under the storage root at a path derived from Filename; row and blob
// can transiently diverge and both sides tolerate that.
type File struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
}
