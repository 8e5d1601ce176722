package model

import "time"

// Rating is a row in the `ratings` table.  The (UserID, ImageID) pair is
// unique: rating the same image again overwrites the previous value.
type Rating struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	ImageID   uint64    `json:"image_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a row in the `comments` table.  UpdatedAt moves forward every
// time the author edits the text.
type Comment struct {
	ID        uint64    `json:"id"`
	ImageID   uint64    `json:"image_id"`
	UserID    uint64    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
