package model

import "time"

// Image is a row in the `images` table.  URL points at the stored object;
// pixel data never touches the database.  Transformations create a brand new
// Image row with its own URL instead of mutating the original.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the image (references users.id).
//  Description – free-form caption supplied on upload.
//  URL         – public object-store URL of the image.
//  QRCodeURL   – public URL of the generated QR code, empty until requested.
//  Tags        – tag names attached to this image, deduplicated by name.
//  CreatedAt   – timestamp of creation.
type Image struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	QRCodeURL   string    `json:"qr_code_url,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tag is a row in the `tags` table.  Names are unique; images reference tags
// through the image_tags join table.
type Tag struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
