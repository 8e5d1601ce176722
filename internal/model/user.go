package model

import (
	"database/sql"
	"time"
)

// Role values stored in users.role.  The first account ever registered is
// promoted to RoleAdmin; everyone else starts as RoleUser and can only be
// elevated through the admin endpoints.
const (
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	return s == RoleUser || s == RoleModerator || s == RoleAdmin
}

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column.  PasswordHash and RefreshToken
// are never serialized; handlers build separate response types with the
// fields they want to expose.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique display name.
//  Email        – unique, lowercased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (USER, MODERATOR or ADMIN).
//  Banned       – banned accounts keep read access but are rejected on writes.
//  AvatarURL    – public URL of the stored avatar image (empty when unset).
//  RefreshToken – the latest issued refresh token; older ones are invalid.
//  Confirmed    – whether the email address has been confirmed.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64         `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Role         string         `json:"role"`
	Banned       bool           `json:"banned"`
	AvatarURL    sql.NullString `json:"-"`
	RefreshToken sql.NullString `json:"-"`
	Confirmed    bool           `json:"confirmed"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Avatar returns the avatar URL or an empty string when none is stored.
func (u *User) Avatar() string {
	if u.AvatarURL.Valid {
		return u.AvatarURL.String
	}
	return ""
}
