package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/ratehub/ratehub-backend/internal/users"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/pagination"
)

type stubUsersService struct {
	created    *users.UserDTO
	createErr  error
	list       []users.UserDTO
	listMeta   pagination.Meta
	listErr    error
	details    *users.UserDetailsDTO
	detailsErr error
	owners     []users.UserDTO
	ownersErr  error
	stats      *users.DashboardStatsDTO
	statsErr   error
}

func (s *stubUsersService) Create(_ context.Context, _ users.CreateUserInput) (*users.UserDTO, error) {
	return s.created, s.createErr
}

func (s *stubUsersService) List(_ context.Context, query users.ListUsersQuery) ([]users.UserDTO, pagination.Meta, error) {
	return s.list, s.listMeta, s.listErr
}

func (s *stubUsersService) Details(_ context.Context, _ uuid.UUID) (*users.UserDetailsDTO, error) {
	return s.details, s.detailsErr
}

func (s *stubUsersService) StoreOwners(_ context.Context) ([]users.UserDTO, error) {
	return s.owners, s.ownersErr
}

func (s *stubUsersService) DashboardStats(_ context.Context) (*users.DashboardStatsDTO, error) {
	return s.stats, s.statsErr
}

func TestCreateUserSuccess(t *testing.T) {
	dto := &users.UserDTO{ID: uuid.New(), Email: "store.owner@example.com", Role: enums.RoleStoreOwner}
	handler := CreateUser(&stubUsersService{created: dto}, nil)

	payload := []byte(`{
		"name": "Margaret Eleanor Thompson",
		"email": "store.owner@example.com",
		"address": "9 Station Road",
		"password": "Sup3rSecret!",
		"role": "storeOwner"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/create", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Role != enums.RoleStoreOwner {
		t.Fatalf("expected storeOwner role got %s", envelope.Data.Role)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	handler := CreateUser(&stubUsersService{}, nil)

	payload := []byte(`{
		"name": "Margaret Eleanor Thompson",
		"email": "store.owner@example.com",
		"address": "9 Station Road",
		"password": "Sup3rSecret!",
		"role": "superadmin"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/create", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	handler := CreateUser(&stubUsersService{createErr: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}, nil)

	payload := []byte(`{
		"name": "Margaret Eleanor Thompson",
		"email": "store.owner@example.com",
		"address": "9 Station Road",
		"password": "Sup3rSecret!",
		"role": "user"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/create", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestListUsersReturnsMeta(t *testing.T) {
	svc := &stubUsersService{
		list:     []users.UserDTO{{ID: uuid.New(), Name: "Margaret Eleanor Thompson"}},
		listMeta: pagination.Meta{Current: 1, Pages: 2, Total: 12},
	}
	handler := ListUsers(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/all?role=storeOwner", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data []users.UserDTO `json:"data"`
		Meta pagination.Meta `json:"meta"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Meta.Total != 12 {
		t.Fatalf("expected total 12 got %d", envelope.Meta.Total)
	}
}

func TestUserDetailsInvalidID(t *testing.T) {
	handler := UserDetails(&stubUsersService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/details/not-a-uuid", nil)
	req = withRouteParam(req, "userID", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUserDetailsIncludesOwnedStore(t *testing.T) {
	userID := uuid.New()
	details := &users.UserDetailsDTO{
		UserDTO: users.UserDTO{ID: userID, Role: enums.RoleStoreOwner},
		Store:   &users.OwnedStoreDTO{ID: uuid.New(), AverageRating: 4.5, TotalRatings: 8},
	}
	handler := UserDetails(&stubUsersService{details: details}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/details/"+userID.String(), nil)
	req = withRouteParam(req, "userID", userID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data users.UserDetailsDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Store == nil || envelope.Data.Store.AverageRating != 4.5 {
		t.Fatalf("expected owned store in details, got %+v", envelope.Data.Store)
	}
}

func TestDashboardStatsSuccess(t *testing.T) {
	stats := &users.DashboardStatsDTO{TotalUsers: 10, TotalStores: 4, TotalRatings: 32}
	handler := DashboardStats(&stubUsersService{stats: stats}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/dashboard-stats", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data users.DashboardStatsDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalRatings != 32 {
		t.Fatalf("expected 32 ratings got %d", envelope.Data.TotalRatings)
	}
}
