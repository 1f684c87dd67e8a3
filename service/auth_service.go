package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"go-shop-api/common"
	"go-shop-api/logger"
	"go-shop-api/model"
	"go-shop-api/repository"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateAccount      = errors.New("a user with this email already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMissingToken          = errors.New("refresh token is missing")
	ErrRevokedToken          = errors.New("refresh token has been revoked")
	ErrExpiredOrInvalidToken = errors.New("invalid or expired refresh token")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrStoreUnavailable      = errors.New("store unavailable")
)

// Options configures token signing and password hashing.
type Options struct {
	AccessSecret        string
	RefreshSecret       string
	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	Issuer              string
	BcryptCost          int
	RotateRefreshTokens bool
}

// AuthService owns the credential and session lifecycle: it turns signups
// and logins into token pairs, exchanges refresh tokens for access tokens,
// and revokes refresh tokens on logout.
type AuthService struct {
	users      repository.IUserRepository
	tokens     repository.TokenStore
	issuer     *TokenIssuer
	bcryptCost int
	rotate     bool

	// dummyHash is compared against when an email is unknown so that a
	// failed login costs one bcrypt comparison either way.
	dummyHash []byte
}

func NewAuthService(users repository.IUserRepository, tokens repository.TokenStore, opts Options) (*AuthService, error) {
	issuer, err := NewTokenIssuer(opts)
	if err != nil {
		return nil, err
	}

	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}

	filler := make([]byte, 32)
	if _, err := rand.Read(filler); err != nil {
		return nil, fmt.Errorf("could not seed dummy hash: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword(filler[:], cost)
	if err != nil {
		return nil, fmt.Errorf("could not build dummy hash: %w", err)
	}

	return &AuthService{
		users:      users,
		tokens:     tokens,
		issuer:     issuer,
		bcryptCost: cost,
		rotate:     opts.RotateRefreshTokens,
		dummyHash:  dummy,
	}, nil
}

// NormalizeEmail trims and lowercases an address. Every comparison and
// every stored email goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.TokenPair, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = NormalizeEmail(req.Email)
	if err := common.Validate(&req); err != nil {
		return nil, err
	}

	log := logger.Log.WithField("email", req.Email)

	// Early exit for the common case; the unique constraint in the store
	// still decides concurrent signups.
	_, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		log.Info("Signup rejected: email already registered")
		return nil, ErrDuplicateAccount
	case !errors.Is(err, sql.ErrNoRows):
		return nil, storeError(err)
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			log.Info("Signup rejected: email already registered")
			return nil, ErrDuplicateAccount
		}
		return nil, storeError(err)
	}

	log.WithField("user_id", user.ID).Info("User registered")
	return s.issuePair(ctx, user)
}

// Login verifies credentials and returns a fresh token pair. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.TokenPair, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := common.Validate(&req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, storeError(err)
	}

	if !s.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Log.WithField("user_id", user.ID).Info("Login rejected: password mismatch")
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(ctx, user)
}

// Refresh exchanges an active refresh token for a new access token. With
// rotation enabled the presented refresh token is retired and a new one is
// returned in the pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		logger.Log.WithError(err).Info("Refresh rejected: token failed verification")
		return nil, ErrExpiredOrInvalidToken
	}

	log := logger.Log.WithField("user_id", claims.UserID)

	// With rotation the token is claimed by removing it, so of several
	// concurrent exchanges of one token only the first succeeds.
	var active bool
	if s.rotate {
		active, err = s.tokens.Remove(ctx, refreshToken)
	} else {
		active, err = s.tokens.Contains(ctx, refreshToken)
	}
	if err != nil {
		return nil, storeError(err)
	}
	if !active {
		log.Info("Refresh rejected: token not in active set")
		return nil, ErrRevokedToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Refresh rejected: subject no longer exists")
			return nil, ErrExpiredOrInvalidToken
		}
		return nil, storeError(err)
	}

	if s.rotate {
		return s.issuePair(ctx, user)
	}

	access, accessExp, err := s.issuer.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{
		AccessToken:     access,
		AccessExpiresAt: accessExp,
		UserID:          user.ID,
	}, nil
}

// Logout removes refreshToken from the active set. It succeeds whether or
// not the token was present.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return ErrMissingToken
	}
	if _, err := s.tokens.Remove(ctx, refreshToken); err != nil {
		return storeError(err)
	}
	return nil
}

// VerifyAccessToken checks signature and expiry only; it never consults the
// active set, so access tokens live until they expire.
func (s *AuthService) VerifyAccessToken(token string) (*model.AppClaims, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}
	claims, err := s.issuer.ParseAccess(token)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}
	return claims, nil
}

// RefreshSubject returns the account a cryptographically valid refresh token
// belongs to, without consulting the active set.
func (s *AuthService) RefreshSubject(refreshToken string) (int, bool) {
	claims, err := s.issuer.ParseRefresh(strings.TrimSpace(refreshToken))
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}

func (s *AuthService) issuePair(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	access, accessExp, err := s.issuer.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Add(ctx, user.ID, refresh, refreshExp); err != nil {
		return nil, storeError(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":            user.ID,
		"refresh_expires_at": refreshExp,
	}).Info("Issued token pair")

	return &model.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		UserID:           user.ID,
	}, nil
}

// storeError hides collaborator failures behind ErrStoreUnavailable while
// keeping the cause for logs.
func storeError(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
