package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kidoralabs/kidora-backend/api/middleware"
	"github.com/kidoralabs/kidora-backend/internal/auth"
	"github.com/kidoralabs/kidora-backend/internal/users"
	"github.com/kidoralabs/kidora-backend/pkg/enums"
	pkgerrors "github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

type stubAuthService struct {
	registerResp *auth.AuthResponse
	registerErr  error
	loginResp    *auth.AuthResponse
	loginErr     error

	profileInput *auth.UpdateProfileInput
}

func (s *stubAuthService) Register(ctx context.Context, input auth.RegisterInput) (*auth.AuthResponse, error) {
	return s.registerResp, s.registerErr
}

func (s *stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.AuthResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	return nil
}

func (s *stubAuthService) Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input auth.UpdateProfileInput) (*users.UserDTO, error) {
	s.profileInput = &input
	return &users.UserDTO{ID: userID}, nil
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input auth.ChangePasswordInput) error {
	return nil
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) error {
	return nil
}

func (s *stubAuthService) ResetPassword(ctx context.Context, input auth.ResetPasswordInput) error {
	return nil
}

func (s *stubAuthService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return false, nil
}

func controllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginSuccess(t *testing.T) {
	svc := &stubAuthService{loginResp: &auth.AuthResponse{
		AccessToken: "access-token",
		TokenType:   "Bearer",
		User:        users.UserDTO{ID: uuid.New(), Email: "user@example.com", Role: enums.RoleUser},
	}}

	handler := Login(svc, controllerLogger())
	req := jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"user@example.com","password":"secret1"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Data struct {
			AccessToken string `json:"accessToken"`
			TokenType   string `json:"tokenType"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.AccessToken != "access-token" || body.Data.TokenType != "Bearer" {
		t.Fatalf("unexpected payload %+v", body.Data)
	}
}

func TestLoginValidation(t *testing.T) {
	handler := Login(&stubAuthService{}, controllerLogger())

	cases := []struct {
		name string
		body string
	}{
		{name: "missing password", body: `{"email":"user@example.com"}`},
		{name: "bad email", body: `{"email":"not-an-email","password":"secret1"}`},
		{name: "unknown field", body: `{"email":"user@example.com","password":"secret1","extra":true}`},
		{name: "malformed json", body: `{"email":`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/auth/login", tc.body))
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}

			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error.Code != string(pkgerrors.CodeValidation) {
				t.Fatalf("unexpected code %q", body.Error.Code)
			}
		})
	}
}

func TestLoginBadCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")}
	handler := Login(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"user@example.com","password":"wrong"}`))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRegisterCreated(t *testing.T) {
	svc := &stubAuthService{registerResp: &auth.AuthResponse{
		AccessToken: "access-token",
		TokenType:   "Bearer",
		User:        users.UserDTO{ID: uuid.New(), Email: "new@example.com", Role: enums.RoleUser},
	}}
	handler := Register(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/auth/register", `{"email":"new@example.com","password":"secret1","fullName":"New User"}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUpdateProfilePhoneSemantics(t *testing.T) {
	userID := uuid.New()

	run := func(t *testing.T, body string) *stubAuthService {
		t.Helper()
		svc := &stubAuthService{}
		handler := UpdateProfile(svc, controllerLogger())

		req := jsonRequest(http.MethodPut, "/api/user/me", body)
		req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
		}
		if svc.profileInput == nil {
			t.Fatal("service was not called")
		}
		return svc
	}

	t.Run("phone omitted leaves it untouched", func(t *testing.T) {
		svc := run(t, `{"fullName":"Renamed"}`)
		if svc.profileInput.PhoneSet {
			t.Fatal("expected PhoneSet false when phone key is absent")
		}
	})

	t.Run("phone null clears it", func(t *testing.T) {
		svc := run(t, `{"phone":null}`)
		if !svc.profileInput.PhoneSet {
			t.Fatal("expected PhoneSet true for explicit null")
		}
		if svc.profileInput.Phone != nil {
			t.Fatalf("expected nil phone, got %v", *svc.profileInput.Phone)
		}
	})

	t.Run("phone value updates it", func(t *testing.T) {
		svc := run(t, `{"phone":"+15550100"}`)
		if !svc.profileInput.PhoneSet {
			t.Fatal("expected PhoneSet true")
		}
		if svc.profileInput.Phone == nil || *svc.profileInput.Phone != "+15550100" {
			t.Fatalf("unexpected phone %v", svc.profileInput.Phone)
		}
	})
}

func TestUpdateProfileRequiresActor(t *testing.T) {
	handler := UpdateProfile(&stubAuthService{}, controllerLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, jsonRequest(http.MethodPut, "/api/user/me", `{"fullName":"Renamed"}`))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestPasswordResetRequestNeverLeaks(t *testing.T) {
	handler := PasswordResetRequest(&stubAuthService{}, controllerLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/auth/password-reset/request", `{"email":"ghost@example.com"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var body struct {
		Data struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.Message == "" {
		t.Fatal("expected a generic confirmation message")
	}
}
