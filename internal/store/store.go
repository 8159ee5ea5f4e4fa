// Package store persists users, their details and e-mail bookkeeping.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"USER_REGISTRATION_BACK-END/internal/models"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrUsernameTaken = errors.New("store: username already taken")
	ErrProfileLinked = errors.New("store: user details already linked to another user")
	ErrInvalidOrder  = errors.New("store: invalid ordering field")
)

// Store is the persistence contract used by the account service and the
// HTTP handlers. Both the Postgres and the in-memory implementation honour
// the same invariants: usernames are unique case-insensitively, a profile is
// linked to at most one user, and deleting a profile clears the link.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	// UpdateUser writes the account fields of u. It never touches
	// password_hash or last_login, which have their own narrow writes so a
	// stale copy of the row cannot undo a concurrent password change.
	UpdateUser(ctx context.Context, u *models.User) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserWithProfile(ctx context.Context, id int64) (*models.UserWithProfile, error)
	ListUsers(ctx context.Context, order Ordering) ([]models.UserWithProfile, error)

	CreateProfile(ctx context.Context, p *models.Profile) error
	UpdateProfile(ctx context.Context, p *models.Profile) error
	// GetProfile and DeleteProfile serve maintenance and tests. Deleting a
	// profile leaves its user in place with the link cleared.
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id int64) error

	AddEmailAddress(ctx context.Context, a *models.EmailAddress) error
	PrimaryEmailAddress(ctx context.Context, userID int64) (*models.EmailAddress, error)
	VerifyEmailAddress(ctx context.Context, id int64) error
	CreateEmailConfirmation(ctx context.Context, c *models.EmailConfirmation) error
	GetEmailConfirmation(ctx context.Context, key uuid.UUID) (*models.EmailConfirmation, error)
	MarkConfirmationSent(ctx context.Context, key uuid.UUID) error

	CreateVerification(ctx context.Context, v *models.Verification) error
	LatestVerification(ctx context.Context, userID int64, email string) (*models.Verification, error)
	FindVerification(ctx context.Context, userID int64, email, code string) (*models.Verification, error)
	MarkVerificationUsed(ctx context.Context, id uuid.UUID) error

	// WithTx runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise; fn's
	// error is returned unchanged.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

// Ordering is a whitelisted sort for user listings.
type Ordering struct {
	Field string
	Desc  bool
}

// DefaultOrdering lists newest users first.
var DefaultOrdering = Ordering{Field: "id", Desc: true}

var orderColumns = map[string]string{
	"id":         "u.id",
	"username":   "u.username",
	"email":      "u.email",
	"first_name": "u.first_name",
	"last_name":  "u.last_name",
}

// ParseOrdering parses an ordering query value such as "-id" or "username".
// An empty value yields DefaultOrdering.
func ParseOrdering(raw string) (Ordering, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultOrdering, nil
	}
	o := Ordering{Field: raw}
	if strings.HasPrefix(raw, "-") {
		o = Ordering{Field: raw[1:], Desc: true}
	}
	if _, ok := orderColumns[o.Field]; !ok {
		return Ordering{}, fmt.Errorf("%w: %q", ErrInvalidOrder, raw)
	}
	return o, nil
}

func (o Ordering) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}
