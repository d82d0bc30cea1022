package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/pagination"
	"github.com/ratehub/ratehub-backend/pkg/security"
)

func testPasswordCfg() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

type stubUserRepo struct {
	user       *models.User
	findErr    error
	createErr  error
	list       []models.User
	listTotal  int64
	listErr    error
	byRole     []models.User
	count      int64
	countErr   error
	lastCreate *models.User
}

func (s *stubUserRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	s.lastCreate = user
	return s.createErr
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.user, s.findErr
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.user, s.findErr
}

func (s *stubUserRepo) List(ctx context.Context, query ListUsersQuery) ([]models.User, int64, error) {
	return s.list, s.listTotal, s.listErr
}

func (s *stubUserRepo) ListByRole(ctx context.Context, role enums.Role) ([]models.User, error) {
	return s.byRole, s.listErr
}

func (s *stubUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return nil
}

func (s *stubUserRepo) Count(ctx context.Context) (int64, error) { return s.count, s.countErr }

type stubStoreReader struct {
	store *models.Store
	count int64
	err   error
}

func (s stubStoreReader) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	return s.store, s.err
}

func (s stubStoreReader) Count(ctx context.Context) (int64, error) { return s.count, s.err }

type stubRatingCounter struct {
	count int64
	err   error
}

func (s stubRatingCounter) Count(ctx context.Context) (int64, error) { return s.count, s.err }

func newTestService(repo Repository, stores storeReader, ratings ratingCounter) Service {
	svc, err := NewService(repo, stores, ratings, testPasswordCfg())
	if err != nil {
		panic(err)
	}
	return svc
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(repo, stubStoreReader{}, stubRatingCounter{})

	dto, err := svc.Create(context.Background(), CreateUserInput{
		Name:     "Alice Pemberton Wainwright",
		Email:    "Alice@Example.com",
		Address:  "12 Example Street",
		Password: "Sup3rSecret!",
		Role:     enums.RoleUser,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if dto.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", dto.Email)
	}
	if repo.lastCreate == nil || repo.lastCreate.PasswordHash == "Sup3rSecret!" || repo.lastCreate.PasswordHash == "" {
		t.Fatalf("expected hashed password, got %q", repo.lastCreate.PasswordHash)
	}
	if ok, err := security.VerifyPassword("Sup3rSecret!", repo.lastCreate.PasswordHash); err != nil || !ok {
		t.Fatalf("expected stored hash to verify, ok=%v err=%v", ok, err)
	}
}

func TestCreateUserRejectsInvalidRole(t *testing.T) {
	svc := newTestService(&stubUserRepo{}, stubStoreReader{}, stubRatingCounter{})

	_, err := svc.Create(context.Background(), CreateUserInput{Role: enums.Role("superuser")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateUserDuplicateEmailIsConflict(t *testing.T) {
	repo := &stubUserRepo{createErr: errors.New(`duplicate key value violates unique constraint "idx_users_email"`)}
	svc := newTestService(repo, stubStoreReader{}, stubRatingCounter{})

	_, err := svc.Create(context.Background(), CreateUserInput{
		Password: "Sup3rSecret!",
		Role:     enums.RoleUser,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestListRejectsInvalidRoleFilter(t *testing.T) {
	svc := newTestService(&stubUserRepo{}, stubStoreReader{}, stubRatingCounter{})

	_, _, err := svc.List(context.Background(), ListUsersQuery{Role: "superuser"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListReturnsMeta(t *testing.T) {
	repo := &stubUserRepo{
		list:      []models.User{{ID: uuid.New(), Name: "Alice Pemberton Wainwright", Role: enums.RoleUser}},
		listTotal: 25,
	}
	svc := newTestService(repo, stubStoreReader{}, stubRatingCounter{})

	dtos, meta, err := svc.List(context.Background(), ListUsersQuery{Page: pagination.Params{Page: 3, Limit: 10}})
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(dtos) != 1 {
		t.Fatalf("expected 1 user, got %d", len(dtos))
	}
	if meta.Current != 3 || meta.Pages != 3 || meta.Total != 25 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestDetailsMissingUserIsNotFound(t *testing.T) {
	svc := newTestService(&stubUserRepo{}, stubStoreReader{}, stubRatingCounter{})

	_, err := svc.Details(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDetailsAttachesOwnedStore(t *testing.T) {
	owner := &models.User{ID: uuid.New(), Name: "Henrietta Oakwood Merchant", Role: enums.RoleStoreOwner}
	store := &models.Store{ID: uuid.New(), Name: "Corner Grocery", OwnerID: owner.ID, AverageRating: 4.5, TotalRatings: 8}
	svc := newTestService(&stubUserRepo{user: owner}, stubStoreReader{store: store}, stubRatingCounter{})

	details, err := svc.Details(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if details.Store == nil || details.Store.ID != store.ID {
		t.Fatalf("expected owned store attached, got %+v", details.Store)
	}
	if details.Store.AverageRating != 4.5 || details.Store.TotalRatings != 8 {
		t.Fatalf("expected store aggregates, got %+v", details.Store)
	}
}

func TestDetailsPlainUserHasNoStore(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Alice Pemberton Wainwright", Role: enums.RoleUser}
	svc := newTestService(&stubUserRepo{user: user}, stubStoreReader{}, stubRatingCounter{})

	details, err := svc.Details(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if details.Store != nil {
		t.Fatalf("expected no store for plain user, got %+v", details.Store)
	}
}

func TestDashboardStatsAggregatesCounters(t *testing.T) {
	repo := &stubUserRepo{count: 42}
	svc := newTestService(repo, stubStoreReader{count: 7}, stubRatingCounter{count: 99})

	stats, err := svc.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("dashboard stats: %v", err)
	}
	if stats.TotalUsers != 42 || stats.TotalStores != 7 || stats.TotalRatings != 99 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestDashboardStatsPropagatesCounterError(t *testing.T) {
	svc := newTestService(&stubUserRepo{countErr: errors.New("boom")}, stubStoreReader{}, stubRatingCounter{})

	_, err := svc.DashboardStats(context.Background())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
