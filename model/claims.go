package model

import "github.com/golang-jwt/jwt/v5"

// Token kinds, stored in the "typ" claim. Parsing rejects a token of the
// wrong kind.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type AppClaims struct {
	UserID    int    `json:"user_id"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}
