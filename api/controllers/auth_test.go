package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/ratehub/ratehub-backend/api/middleware"
	"github.com/ratehub/ratehub-backend/internal/auth"
	"github.com/ratehub/ratehub-backend/internal/users"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
)

type stubAuthService struct {
	loginResp   *auth.LoginResponse
	loginErr    error
	refreshResp *auth.LoginResponse
	refreshErr  error
	logoutErr   error
	profile     *users.UserDTO
	profileErr  error
	changeErr   error

	loggedOutAccessID string
}

func (s *stubAuthService) Register(_ context.Context, _ auth.RegisterInput) (*auth.LoginResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) Login(_ context.Context, _ auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) Refresh(_ context.Context, _, _ string) (*auth.LoginResponse, error) {
	return s.refreshResp, s.refreshErr
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.loggedOutAccessID = accessID
	return s.logoutErr
}

func (s *stubAuthService) Profile(_ context.Context, _ uuid.UUID) (*users.UserDTO, error) {
	return s.profile, s.profileErr
}

func (s *stubAuthService) ChangePassword(_ context.Context, _ uuid.UUID, _ auth.ChangePasswordInput) error {
	return s.changeErr
}

func TestRegisterSuccess(t *testing.T) {
	resp := &auth.LoginResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &users.UserDTO{ID: uuid.New(), Email: "normal.user@example.com"},
	}
	handler := Register(&stubAuthService{loginResp: resp}, nil)

	payload := []byte(`{
		"name": "Jonathan Archibald Smithers",
		"email": "normal.user@example.com",
		"address": "12 Main Street",
		"password": "Sup3rSecret!"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access" {
		t.Fatalf("expected access token, got %q", envelope.Data.AccessToken)
	}
	if envelope.Data.User == nil || envelope.Data.User.Email != "normal.user@example.com" {
		t.Fatalf("unexpected user payload: %+v", envelope.Data.User)
	}
}

func TestRegisterRejectsShortName(t *testing.T) {
	handler := Register(&stubAuthService{}, nil)

	payload := []byte(`{
		"name": "Shorty",
		"email": "normal.user@example.com",
		"address": "12 Main Street",
		"password": "Sup3rSecret!"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler := Login(&stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}, nil)

	payload := []byte(`{"email": "normal.user@example.com", "password": "WrongPass1!"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestRefreshRequiresAccessToken(t *testing.T) {
	handler := Refresh(&stubAuthService{}, nil)

	payload := []byte(`{"refresh_token": "refresh"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestRefreshSuccess(t *testing.T) {
	resp := &auth.LoginResponse{AccessToken: "new-access", RefreshToken: "new-refresh"}
	handler := Refresh(&stubAuthService{refreshResp: resp}, nil)

	payload := []byte(`{"refresh_token": "refresh"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "new-access" {
		t.Fatalf("expected rotated access token, got %q", envelope.Data.AccessToken)
	}
}

func TestLogoutRevokesSessionFromContext(t *testing.T) {
	svc := &stubAuthService{}
	handler := Logout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(middleware.WithAccessID(req.Context(), "access-id-1"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.loggedOutAccessID != "access-id-1" {
		t.Fatalf("expected logout for access-id-1, got %q", svc.loggedOutAccessID)
	}
}

func TestProfileRequiresAuthenticatedUser(t *testing.T) {
	handler := Profile(&stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestChangePasswordRejectsWeakPassword(t *testing.T) {
	handler := ChangePassword(&stubAuthService{}, nil)

	payload := []byte(`{"current_password": "Sup3rSecret!", "new_password": "alllowercase"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/auth/change-password", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	handler := ChangePassword(&stubAuthService{changeErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")}, nil)

	payload := []byte(`{"current_password": "WrongPass1!", "new_password": "Sup3rSecret!"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/auth/change-password", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
