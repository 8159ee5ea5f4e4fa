package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailAddress is an e-mail address owned by a user, verified or not
type EmailAddress struct {
	ID       int64  `json:"id" db:"id"`
	UserID   int64  `json:"user_id" db:"user_id"`
	Email    string `json:"email" db:"email"`
	Verified bool   `json:"verified" db:"verified"`
	Primary  bool   `json:"primary" db:"is_primary"`
}

// EmailConfirmation is a one-time key that verifies an EmailAddress
type EmailConfirmation struct {
	Key            uuid.UUID  `json:"key" db:"key"`
	EmailAddressID int64      `json:"email_address_id" db:"email_address_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	SentAt         *time.Time `json:"sent_at" db:"sent_at"`

	Address EmailAddress `json:"email_address"`
}

// Expired reports whether the key is older than ttl at now.
func (c *EmailConfirmation) Expired(now time.Time, ttl time.Duration) bool {
	issued := c.CreatedAt
	if c.SentAt != nil {
		issued = *c.SentAt
	}
	return now.After(issued.Add(ttl))
}

// Verification is a password reset code sent by e-mail
type Verification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	Code      string    `json:"-" db:"code"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
