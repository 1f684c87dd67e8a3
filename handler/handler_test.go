package handler

import (
	"context"
	"errors"
	"fmt"
	"go-shop-api/common"
	"go-shop-api/logger"
	"go-shop-api/model"
	"go-shop-api/service"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init("error", "text")
	logger.Log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestHealthCheck(t *testing.T) {
	rr := httptest.NewRecorder()
	HealthCheck(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"API is healthy and running"}`, rr.Body.String())
}

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &common.ValidationError{Fields: []common.FieldError{{Field: "email"}}}, http.StatusBadRequest},
		{"duplicate", service.ErrDuplicateAccount, http.StatusConflict},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"missing refresh", service.ErrMissingToken, http.StatusUnauthorized},
		{"revoked refresh", service.ErrRevokedToken, http.StatusForbidden},
		{"invalid refresh", service.ErrExpiredOrInvalidToken, http.StatusForbidden},
		{"invalid access", service.ErrInvalidOrExpiredToken, http.StatusUnauthorized},
		{"user not found", service.ErrUserNotFound, http.StatusNotFound},
		{"product not found", service.ErrProductNotFound, http.StatusNotFound},
		{"invalid role", service.ErrInvalidRole, http.StatusBadRequest},
		{"store down", fmt.Errorf("%w: %w", service.ErrStoreUnavailable, errors.New("dial tcp: refused")), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			appErr := mapServiceError(tc.err)
			assert.Equal(t, tc.code, appErr.Code)
		})
	}

	t.Run("internal errors are not leaked", func(t *testing.T) {
		appErr := mapServiceError(errors.New("pq: connection refused"))
		assert.Equal(t, msgInternal, appErr.Message)
	})
}

type fakeVerifier struct {
	claims *model.AppClaims
}

func (f fakeVerifier) VerifyAccessToken(token string) (*model.AppClaims, error) {
	if token != "good" {
		return nil, service.ErrInvalidOrExpiredToken
	}
	return f.claims, nil
}

func TestAuthMiddleware(t *testing.T) {
	verifier := fakeVerifier{claims: &model.AppClaims{UserID: 7, Role: string(model.RoleUser)}}
	var gotID int
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = userIDFrom(r)
		gotRole, _ = r.Context().Value(UserRoleKey).(string)
		w.WriteHeader(http.StatusTeapot)
	})
	h := AuthMiddleware(verifier)(next)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"too many parts", "Bearer good extra", http.StatusUnauthorized},
		{"bad token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusTeapot},
		{"scheme is case-insensitive", "bearer good", http.StatusTeapot},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tc.code, rr.Code)
		})
	}

	assert.Equal(t, 7, gotID)
	assert.Equal(t, "user", gotRole)
}

func TestAdminMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := AdminMiddleware(next)

	for role, code := range map[string]int{"admin": http.StatusOK, "user": http.StatusForbidden, "": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if role != "" {
			req = req.WithContext(context.WithValue(req.Context(), UserRoleKey, role))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, code, rr.Code, "role %q", role)
	}
}

func TestRefreshTokenFrom(t *testing.T) {
	t.Run("cookie wins over body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refresh_token":"from-body"}`))
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "from-cookie"})
		assert.Equal(t, "from-cookie", refreshTokenFrom(req))
	})

	t.Run("body on POST", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refresh_token":"from-body"}`))
		assert.Equal(t, "from-body", refreshTokenFrom(req))
	})

	t.Run("body ignored on GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", strings.NewReader(`{"refresh_token":"from-body"}`))
		assert.Empty(t, refreshTokenFrom(req))
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		assert.Empty(t, refreshTokenFrom(req))
	})
}

func TestParseAuditFilter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f, appErr := parseAuditFilter(httptest.NewRequest(http.MethodGet, "/api/audit-logs", nil))
		require.Nil(t, appErr)
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, 10, f.Limit)
		assert.Nil(t, f.StartDate)
	})

	t.Run("all filters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/api/audit-logs?page=2&limit=500&user_id=4&action=login&start_date=2025-01-01&end_date=2025-01-31", nil)
		f, appErr := parseAuditFilter(req)
		require.Nil(t, appErr)
		assert.Equal(t, 2, f.Page)
		assert.Equal(t, 50, f.Limit)
		assert.Equal(t, 4, f.UserID)
		assert.Equal(t, "login", f.Action)
		require.NotNil(t, f.StartDate)
		require.NotNil(t, f.EndDate)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
		assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), *f.EndDate)
	})

	t.Run("huge page is capped", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/audit-logs?page=1000000000000000000&limit=50", nil)
		f, appErr := parseAuditFilter(req)
		require.Nil(t, appErr)
		assert.LessOrEqual(t, (f.Page-1)*f.Limit, math.MaxInt32)
		assert.Positive(t, f.Page)
	})

	t.Run("rfc3339 dates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/audit-logs?start_date=2025-01-01T10:00:00Z", nil)
		f, appErr := parseAuditFilter(req)
		require.Nil(t, appErr)
		assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), *f.StartDate)
	})

	for _, q := range []string{"user_id=abc", "user_id=-1", "start_date=soon", "end_date=2025-13-01"} {
		t.Run("rejects "+q, func(t *testing.T) {
			_, appErr := parseAuditFilter(httptest.NewRequest(http.MethodGet, "/api/audit-logs?"+q, nil))
			require.NotNil(t, appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.Code)
		})
	}
}

func TestRealIPMiddleware(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.168.1.1", " "})
	require.NoError(t, err)

	resolve := func(remote, xff string) string {
		var got string
		h := RealIPMiddleware(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = clientIP(r)
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		return got
	}

	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct client", "203.0.113.9:5555", "", "203.0.113.9"},
		{"spoofed header from untrusted peer", "203.0.113.9:5555", "1.2.3.4", "203.0.113.9"},
		{"trusted proxy", "10.0.0.1:5555", "198.51.100.7", "198.51.100.7"},
		{"client-supplied hops are skipped", "10.0.0.1:5555", "1.2.3.4, 198.51.100.7, 10.1.1.1", "198.51.100.7"},
		{"single trusted address", "192.168.1.1:80", "198.51.100.7", "198.51.100.7"},
		{"garbage hop stops the walk", "10.0.0.1:5555", "198.51.100.7, nonsense", "10.0.0.1"},
		{"trusted proxy without header", "10.0.0.1:5555", "", "10.0.0.1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolve(tc.remote, tc.xff))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	_, err := ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)

	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)

	prefixes, err := ParseTrustedProxies(nil)
	assert.NoError(t, err)
	assert.Empty(t, prefixes)
}

func TestClientIPWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "10.0.0.1", clientIP(req))
}
