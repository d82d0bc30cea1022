package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ratehub/ratehub-backend/internal/ratings"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/pagination"
)

type stubStoreRepo struct {
	store      *models.Store
	byOwner    *models.Store
	createErr  error
	findErr    error
	list       []models.Store
	listTotal  int64
	listErr    error
	lastCreate *models.Store
}

func (s *stubStoreRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubStoreRepo) Create(ctx context.Context, store *models.Store) error {
	s.lastCreate = store
	return s.createErr
}

func (s *stubStoreRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	return s.store, s.findErr
}

func (s *stubStoreRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	return s.byOwner, s.findErr
}

func (s *stubStoreRepo) List(ctx context.Context, query ListStoresQuery) ([]models.Store, int64, error) {
	return s.list, s.listTotal, s.listErr
}

func (s *stubStoreRepo) Count(ctx context.Context) (int64, error) { return s.listTotal, nil }

type stubUserFinder struct {
	user *models.User
	err  error
}

func (s stubUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.user, s.err
}

type stubAnnotator struct {
	byStore map[uuid.UUID]int
	err     error
}

func (s stubAnnotator) MapByUserAndStores(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return s.byStore, s.err
}

type stubLister struct {
	rows []ratings.StoreRatingDTO
	meta pagination.Meta
	err  error
}

func (s stubLister) ListForStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]ratings.StoreRatingDTO, pagination.Meta, error) {
	return s.rows, s.meta, s.err
}

func baseStore() *models.Store {
	return &models.Store{
		ID:            uuid.New(),
		Name:          "Corner Grocery",
		Email:         "corner@example.com",
		Address:       "34 Market Road",
		OwnerID:       uuid.New(),
		AverageRating: 4.2,
		TotalRatings:  12,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func storeOwner() *models.User {
	return &models.User{
		ID:   uuid.New(),
		Name: "Henrietta Oakwood Merchant",
		Role: enums.RoleStoreOwner,
	}
}

func newTestService(repo Repository, users userFinder, annotator ratingAnnotator, lister ratingLister) Service {
	svc, err := NewService(repo, users, annotator, lister)
	if err != nil {
		panic(err)
	}
	return svc
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	if _, err := NewService(nil, stubUserFinder{}, stubAnnotator{}, stubLister{}); err == nil {
		t.Fatal("expected error without repo")
	}
	if _, err := NewService(&stubStoreRepo{}, nil, stubAnnotator{}, stubLister{}); err == nil {
		t.Fatal("expected error without user finder")
	}
	if _, err := NewService(&stubStoreRepo{}, stubUserFinder{}, nil, stubLister{}); err == nil {
		t.Fatal("expected error without annotator")
	}
	if _, err := NewService(&stubStoreRepo{}, stubUserFinder{}, stubAnnotator{}, nil); err == nil {
		t.Fatal("expected error without lister")
	}
}

func TestCreateStoreSuccess(t *testing.T) {
	repo := &stubStoreRepo{}
	owner := storeOwner()
	svc := newTestService(repo, stubUserFinder{user: owner}, stubAnnotator{}, stubLister{})

	dto, err := svc.Create(context.Background(), CreateStoreInput{
		Name:    "  Corner Grocery ",
		Email:   "corner@example.com",
		Address: "34 Market Road",
		OwnerID: owner.ID,
	})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if dto.Name != "Corner Grocery" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if repo.lastCreate == nil || repo.lastCreate.OwnerID != owner.ID {
		t.Fatalf("expected store persisted with owner id")
	}
}

func TestCreateStoreRejectsMissingOwner(t *testing.T) {
	svc := newTestService(&stubStoreRepo{}, stubUserFinder{}, stubAnnotator{}, stubLister{})

	_, err := svc.Create(context.Background(), CreateStoreInput{OwnerID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCreateStoreRejectsWrongRole(t *testing.T) {
	owner := storeOwner()
	owner.Role = enums.RoleUser
	svc := newTestService(&stubStoreRepo{}, stubUserFinder{user: owner}, stubAnnotator{}, stubLister{})

	_, err := svc.Create(context.Background(), CreateStoreInput{OwnerID: owner.ID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateStoreSecondStoreIsConflict(t *testing.T) {
	repo := &stubStoreRepo{createErr: errors.New(`duplicate key value violates unique constraint "idx_stores_owner"`)}
	svc := newTestService(repo, stubUserFinder{user: storeOwner()}, stubAnnotator{}, stubLister{})

	_, err := svc.Create(context.Background(), CreateStoreInput{OwnerID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateStoreDuplicateEmailIsConflict(t *testing.T) {
	repo := &stubStoreRepo{createErr: errors.New(`duplicate key value violates unique constraint "idx_stores_email"`)}
	svc := newTestService(repo, stubUserFinder{user: storeOwner()}, stubAnnotator{}, stubLister{})

	_, err := svc.Create(context.Background(), CreateStoreInput{OwnerID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateStoreDisambiguatesSQLitePhrasing(t *testing.T) {
	repo := &stubStoreRepo{createErr: errors.New("UNIQUE constraint failed: stores.email")}
	svc := newTestService(repo, stubUserFinder{user: storeOwner()}, stubAnnotator{}, stubLister{})

	_, err := svc.Create(context.Background(), CreateStoreInput{OwnerID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if typed.Message() != "store email already in use" {
		t.Fatalf("expected the email conflict, got %q", typed.Message())
	}
}

func TestGetByIDAnnotatesViewerRating(t *testing.T) {
	store := baseStore()
	viewer := uuid.New()
	annotator := stubAnnotator{byStore: map[uuid.UUID]int{store.ID: 4}}
	svc := newTestService(&stubStoreRepo{store: store}, stubUserFinder{}, annotator, stubLister{})

	dto, err := svc.GetByID(context.Background(), store.ID, &viewer)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if dto.UserRating == nil || *dto.UserRating != 4 {
		t.Fatalf("expected viewer rating 4, got %v", dto.UserRating)
	}
}

func TestGetByIDMissingStoreIsNotFound(t *testing.T) {
	svc := newTestService(&stubStoreRepo{}, stubUserFinder{}, stubAnnotator{}, stubLister{})

	_, err := svc.GetByID(context.Background(), uuid.New(), nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestListAnnotatesViewerRatings(t *testing.T) {
	first := baseStore()
	second := baseStore()
	repo := &stubStoreRepo{list: []models.Store{*first, *second}, listTotal: 2}
	viewer := uuid.New()
	annotator := stubAnnotator{byStore: map[uuid.UUID]int{first.ID: 5}}
	svc := newTestService(repo, stubUserFinder{}, annotator, stubLister{})

	dtos, meta, err := svc.List(context.Background(), ListStoresQuery{Page: pagination.Params{Page: 1, Limit: 10}}, &viewer)
	if err != nil {
		t.Fatalf("list stores: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(dtos))
	}
	if dtos[0].UserRating == nil || *dtos[0].UserRating != 5 {
		t.Fatalf("expected first store annotated with rating 5")
	}
	if dtos[1].UserRating != nil {
		t.Fatalf("expected second store without viewer rating")
	}
	if meta.Total != 2 || meta.Pages != 1 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestOwnerDashboardRequiresStore(t *testing.T) {
	svc := newTestService(&stubStoreRepo{}, stubUserFinder{}, stubAnnotator{}, stubLister{})

	_, err := svc.OwnerDashboard(context.Background(), uuid.New(), pagination.Params{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestOwnerDashboardReturnsStoreAndRaters(t *testing.T) {
	store := baseStore()
	raters := []ratings.StoreRatingDTO{{ID: uuid.New(), UserName: "Alice Pemberton Wainwright", Value: 5}}
	lister := stubLister{rows: raters, meta: pagination.Meta{Current: 1, Pages: 1, Total: 1}}
	svc := newTestService(&stubStoreRepo{byOwner: store}, stubUserFinder{}, stubAnnotator{}, lister)

	dash, err := svc.OwnerDashboard(context.Background(), store.OwnerID, pagination.Params{})
	if err != nil {
		t.Fatalf("owner dashboard: %v", err)
	}
	if dash.Store.ID != store.ID {
		t.Fatalf("expected store %s, got %s", store.ID, dash.Store.ID)
	}
	if len(dash.Ratings) != 1 || dash.Ratings[0].Value != 5 {
		t.Fatalf("expected one rater with value 5, got %+v", dash.Ratings)
	}
	if dash.Meta.Total != 1 {
		t.Fatalf("expected meta total 1, got %d", dash.Meta.Total)
	}
}
