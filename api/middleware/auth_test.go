package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/kidoralabs/kidora-backend/pkg/auth"
	"github.com/kidoralabs/kidora-backend/pkg/config"
	"github.com/kidoralabs/kidora-backend/pkg/enums"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

type stubRevocations struct {
	revoked bool
	err     error
	lastJTI string
}

func (s *stubRevocations) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	s.lastJTI = jti
	return s.revoked, s.err
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "kidora-test",
		ExpirationMinutes: 60,
	}
}

func middlewareLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, role enums.Role, jti string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Email:  "user@example.com",
		Role:   role,
		JTI:    jti,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthMissingToken(t *testing.T) {
	handler := Auth(testJWTConfig(), &stubRevocations{}, middlewareLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	handler := Auth(testJWTConfig(), &stubRevocations{}, middlewareLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthWrongSecretRejected(t *testing.T) {
	cfg := testJWTConfig()
	other := cfg
	other.Secret = "another-secret"
	token := mintTestToken(t, other, uuid.New(), enums.RoleUser, uuid.NewString())

	handler := Auth(cfg, &stubRevocations{}, middlewareLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthValidTokenSeedsContext(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	jti := uuid.NewString()
	token := mintTestToken(t, cfg, userID, enums.RoleAdmin, jti)

	revocations := &stubRevocations{}
	var called bool
	handler := Auth(cfg, revocations, middlewareLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if got := UserIDFromContext(r.Context()); got != userID.String() {
			t.Fatalf("unexpected user id %q", got)
		}
		if got := RoleFromContext(r.Context()); got != string(enums.RoleAdmin) {
			t.Fatalf("unexpected role %q", got)
		}
		if got := EmailFromContext(r.Context()); got != "user@example.com" {
			t.Fatalf("unexpected email %q", got)
		}
		if got := JTIFromContext(r.Context()); got != jti {
			t.Fatalf("unexpected jti %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if !called {
		t.Fatal("expected handler to run")
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if revocations.lastJTI != jti {
		t.Fatalf("expected revocation check for %q, got %q", jti, revocations.lastJTI)
	}
}

func TestAuthRevokedToken(t *testing.T) {
	cfg := testJWTConfig()
	token := mintTestToken(t, cfg, uuid.New(), enums.RoleUser, uuid.NewString())

	handler := Auth(cfg, &stubRevocations{revoked: true}, middlewareLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRevocationLookupFailure(t *testing.T) {
	cfg := testJWTConfig()
	token := mintTestToken(t, cfg, uuid.New(), enums.RoleUser, uuid.NewString())

	handler := Auth(cfg, &stubRevocations{err: errors.New("redis down")}, middlewareLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name     string
		role     enums.Role
		expected int
	}{
		{name: "admin allowed", role: enums.RoleAdmin, expected: http.StatusOK},
		{name: "sub admin allowed", role: enums.RoleSubAdmin, expected: http.StatusOK},
		{name: "user rejected", role: enums.RoleUser, expected: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireAdmin(middlewareLogger())(next)
			req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
			req = req.WithContext(WithRole(req.Context(), string(tc.role)))

			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.expected {
				t.Fatalf("expected %d got %d", tc.expected, resp.Code)
			}
		})
	}
}

func TestRequireFullAdminExcludesSubAdmin(t *testing.T) {
	handler := RequireFullAdmin(middlewareLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/x/role", nil)
	req = req.WithContext(WithRole(req.Context(), string(enums.RoleSubAdmin)))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRequireRolesMissingRole(t *testing.T) {
	handler := RequireAdmin(middlewareLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}
