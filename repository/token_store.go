package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TokenStore is the set of refresh tokens that may still be exchanged for
// access tokens. Implementations must be safe for concurrent use and must
// treat entries past expiresAt as absent.
type TokenStore interface {
	Add(ctx context.Context, userID int, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
	// Remove deletes token and reports whether an unexpired entry was
	// removed. Removing an absent token is not an error. At most one of
	// several concurrent calls for the same token reports true.
	Remove(ctx context.Context, token string) (bool, error)
}

// HashToken returns the hex SHA-256 digest under which a token is stored.
// Raw refresh tokens never reach a backing store.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
