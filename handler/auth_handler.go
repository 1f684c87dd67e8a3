package handler

import (
	"errors"
	"go-shop-api/common"
	"go-shop-api/model"
	"go-shop-api/service"
	"net/http"
	"time"
)

const refreshCookieName = "refreshToken"

// AuthHandler serves signup, login, token refresh and logout.
type AuthHandler struct {
	auth         *service.AuthService
	users        *service.UserService
	audit        *service.AuditService
	cookieSecure bool
	refreshTTL   time.Duration
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService, audit *service.AuditService, cookieSecure bool, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		users:        users,
		audit:        audit,
		cookieSecure: cookieSecure,
		refreshTTL:   refreshTTL,
	}
}

// AuthResponse is returned by signup, login and refresh.
type AuthResponse struct {
	Success         bool      `json:"success"`
	Message         string    `json:"message,omitempty"`
	UserID          int       `json:"user_id"`
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
	RefreshToken    string    `json:"refresh_token,omitempty"`
}

// MessageResponse is a bare success envelope.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Signup godoc
// @Summary      Create an account
// @Description  Registers a user and signs them in. The refresh token is also set as an HttpOnly cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload body model.RegisterRequest true "Account details"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  common.AppError "Validation failed"
// @Failure      409  {object}  common.AppError "Email already registered"
// @Failure      500  {object}  common.AppError
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		return appErr
	}

	pair, err := h.auth.Register(r.Context(), req)
	if err != nil {
		return mapServiceError(err)
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	h.record(r, pair.UserID, model.AuditActionSignup, "User signed up", nil)

	common.WriteJSON(w, http.StatusCreated, AuthResponse{
		Success:         true,
		Message:         "User created successfully. Welcome!",
		UserID:          pair.UserID,
		AccessToken:     pair.AccessToken,
		AccessExpiresAt: pair.AccessExpiresAt,
		RefreshToken:    pair.RefreshToken,
	})
	return nil
}

// Login godoc
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload body model.LoginRequest true "Credentials"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  common.AppError "Validation failed"
// @Failure      401  {object}  common.AppError "Invalid credentials"
// @Failure      500  {object}  common.AppError
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		return appErr
	}

	pair, err := h.auth.Login(r.Context(), req)
	if err != nil {
		return mapServiceError(err)
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	h.record(r, pair.UserID, model.AuditActionLogin, "User logged in", nil)

	common.WriteJSON(w, http.StatusOK, AuthResponse{
		Success:         true,
		UserID:          pair.UserID,
		AccessToken:     pair.AccessToken,
		AccessExpiresAt: pair.AccessExpiresAt,
		RefreshToken:    pair.RefreshToken,
	})
	return nil
}

// RefreshToken godoc
// @Summary      Exchange a refresh token for a new access token
// @Description  Reads the refreshToken cookie, or refresh_token from a JSON body on POST.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  AuthResponse
// @Failure      401  {object}  common.AppError "Refresh token is missing"
// @Failure      403  {object}  common.AppError "Refresh token revoked, expired or invalid"
// @Failure      500  {object}  common.AppError
// @Router       /api/auth/refresh-token [get]
// @Router       /api/auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) *common.AppError {
	pair, err := h.auth.Refresh(r.Context(), refreshTokenFrom(r))
	if err != nil {
		return mapServiceError(err)
	}

	if pair.RefreshToken != "" {
		h.setRefreshCookie(w, pair.RefreshToken)
	}

	common.WriteJSON(w, http.StatusOK, AuthResponse{
		Success:         true,
		UserID:          pair.UserID,
		AccessToken:     pair.AccessToken,
		AccessExpiresAt: pair.AccessExpiresAt,
		RefreshToken:    pair.RefreshToken,
	})
	return nil
}

// Logout godoc
// @Summary      Sign out
// @Description  Revokes the refresh token and clears the cookie. Succeeds even if the token was already revoked.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  common.AppError "No token to log out"
// @Failure      500  {object}  common.AppError
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	token := refreshTokenFrom(r)

	if err := h.auth.Logout(r.Context(), token); err != nil {
		if errors.Is(err, service.ErrMissingToken) {
			return common.NewAppError(http.StatusBadRequest, "No token to log out.", nil)
		}
		return mapServiceError(err)
	}

	h.clearRefreshCookie(w)
	if userID, ok := h.auth.RefreshSubject(token); ok {
		h.record(r, userID, model.AuditActionLogout, "User logged out", nil)
	}

	common.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Logged out successfully."})
	return nil
}

// Me godoc
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.User
// @Failure      401  {object}  common.AppError "Invalid or missing token"
// @Failure      404  {object}  common.AppError "Account no longer exists"
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := userIDFrom(r)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
	return nil
}

// refreshTokenFrom prefers the cookie and falls back to a JSON body on POST.
func refreshTokenFrom(r *http.Request) string {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if r.Method != http.MethodPost || r.ContentLength == 0 {
		return ""
	}
	var body model.RefreshRequest
	if appErr := common.DecodeJSON(r, &body); appErr != nil {
		return ""
	}
	return body.RefreshToken
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) record(r *http.Request, userID int, action, description string, metadata map[string]any) {
	recordAudit(h.audit, r, userID, action, description, metadata)
}
