// file: model/token.go

package model

import "time"

// TokenPair is returned by signup, login and refresh. RefreshToken is empty
// when a refresh call does not rotate the refresh token.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token,omitempty"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
	UserID           int       `json:"user_id"`
}
