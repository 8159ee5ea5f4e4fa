// Package revocation tracks logged-out JWTs by their jti until they expire.
package revocation

import (
	"context"
	"time"
)

// List records revoked token IDs.
type List interface {
	// Revoke marks jti as revoked for ttl. A non-positive ttl is a no-op
	// because the token has already expired.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

var (
	_ List = (*Memory)(nil)
	_ List = (*Redis)(nil)
)
