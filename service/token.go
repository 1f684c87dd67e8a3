// file: service/token.go

package service

import (
	"errors"
	"fmt"
	"go-shop-api/model"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer mints and verifies the two JWT kinds. Access and refresh
// tokens are signed with different HS256 keys, so a token of one kind can
// never verify as the other.
type TokenIssuer struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

func NewTokenIssuer(opts Options) (*TokenIssuer, error) {
	if opts.AccessSecret == "" || opts.RefreshSecret == "" {
		return nil, errors.New("both access and refresh signing secrets are required")
	}
	if opts.AccessSecret == opts.RefreshSecret {
		return nil, errors.New("access and refresh signing secrets must differ")
	}
	if opts.AccessTTL <= 0 || opts.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &TokenIssuer{
		accessKey:  []byte(opts.AccessSecret),
		refreshKey: []byte(opts.RefreshSecret),
		accessTTL:  opts.AccessTTL,
		refreshTTL: opts.RefreshTTL,
		issuer:     opts.Issuer,
		now:        time.Now,
	}, nil
}

// IssueAccess returns a signed access token for user and its expiry.
func (t *TokenIssuer) IssueAccess(user *model.User) (string, time.Time, error) {
	return t.sign(t.accessKey, t.accessTTL, model.TokenTypeAccess, user.ID, user.Role)
}

// IssueRefresh returns a signed refresh token for userID and its expiry.
func (t *TokenIssuer) IssueRefresh(userID int) (string, time.Time, error) {
	return t.sign(t.refreshKey, t.refreshTTL, model.TokenTypeRefresh, userID, "")
}

func (t *TokenIssuer) sign(key []byte, ttl time.Duration, typ string, userID int, role string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(ttl)

	claims := &model.AppClaims{
		UserID:    userID,
		Role:      role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(userID),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, exp, nil
}

// ParseAccess verifies signature, expiry and kind of an access token.
func (t *TokenIssuer) ParseAccess(token string) (*model.AppClaims, error) {
	return t.parse(token, t.accessKey, model.TokenTypeAccess)
}

// ParseRefresh verifies signature, expiry and kind of a refresh token.
func (t *TokenIssuer) ParseRefresh(token string) (*model.AppClaims, error) {
	return t.parse(token, t.refreshKey, model.TokenTypeRefresh)
}

func (t *TokenIssuer) parse(token string, key []byte, typ string) (*model.AppClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := &model.AppClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.TokenType != typ {
		return nil, fmt.Errorf("expected %s token, got %q", typ, claims.TokenType)
	}
	if claims.UserID <= 0 || claims.Subject != strconv.Itoa(claims.UserID) {
		return nil, errors.New("token subject is malformed")
	}
	return claims, nil
}
