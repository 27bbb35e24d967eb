package models

import "time"

// Bounds for user fields. These match the database schema constraints and
// are enforced before any write reaches the store.
const (
	UsernameMinLen  = 3
	UsernameMaxLen  = 50
	EmailMinLen     = 5
	EmailMaxLen     = 100
	FullNameMaxLen  = 100
	BioMaxLen       = 500
	AvatarURLMaxLen = 500
	PasswordMinLen  = 6
)

// User represents a user account in the system.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	FullName     string    `json:"fullName,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserUpdate is a partial update of a user record. A nil field is left
// unchanged; a non-nil field is always applied, zero values included, so
// clearing a bio or deactivating an account is not silently skipped.
type UserUpdate struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FullName  *string `json:"fullName"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
	Password  *string `json:"password"`
	IsActive  *bool   `json:"isActive"`
}
