package models

import (
	"strings"
	"time"
)

// UnusablePasswordPrefix marks a password hash that can never match, used
// for accounts created through social login.
const UnusablePasswordPrefix = "!"

// User represents an authentication principal in the system
type User struct {
	ID           int64      `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Hidden from JSON responses
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	DateJoined   time.Time  `json:"date_joined" db:"date_joined"`
	LastLogin    *time.Time `json:"last_login" db:"last_login"`
	// ProfileID links the user to its details row; cleared when the row is deleted.
	ProfileID *int64 `json:"user_details_id" db:"user_details_id"`
}

// HasUsablePassword reports whether the user can authenticate with a password.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != "" && !strings.HasPrefix(u.PasswordHash, UnusablePasswordPrefix)
}

// UserWithProfile is a user joined with its linked profile, if any.
type UserWithProfile struct {
	User
	Profile *Profile `json:"user_details"`
}
