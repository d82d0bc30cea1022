package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/db"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/pagination"
	"github.com/ratehub/ratehub-backend/pkg/security"
)

const (
	emailConstraint = "idx_users_email"
	emailColumns    = "users.email"
)

type storeReader interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	Count(ctx context.Context) (int64, error)
}

type ratingCounter interface {
	Count(ctx context.Context) (int64, error)
}

// CreateUserInput captures the data an admin submits when creating an account.
type CreateUserInput struct {
	Name     string
	Email    string
	Address  string
	Password string
	Role     enums.Role
}

// Service exposes user management operations for admins.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	List(ctx context.Context, query ListUsersQuery) ([]UserDTO, pagination.Meta, error)
	Details(ctx context.Context, id uuid.UUID) (*UserDetailsDTO, error)
	StoreOwners(ctx context.Context) ([]UserDTO, error)
	DashboardStats(ctx context.Context) (*DashboardStatsDTO, error)
}

type service struct {
	repo        Repository
	stores      storeReader
	ratings     ratingCounter
	passwordCfg config.PasswordConfig
}

// NewService builds a user service with the provided dependencies.
func NewService(repo Repository, stores storeReader, ratings ratingCounter, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store reader required")
	}
	if ratings == nil {
		return nil, fmt.Errorf("rating counter required")
	}
	return &service{
		repo:        repo,
		stores:      stores,
		ratings:     ratings,
		passwordCfg: passwordCfg,
	}, nil
}

// Create persists a new account with any platform role.
func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Address:      strings.TrimSpace(input.Address),
		Role:         input.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, emailConstraint, emailColumns) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return FromModel(user), nil
}

// List returns accounts matching the query.
func (s *service) List(ctx context.Context, query ListUsersQuery) ([]UserDTO, pagination.Meta, error) {
	if role := strings.TrimSpace(query.Role); role != "" && !enums.Role(role).IsValid() {
		return nil, pagination.Meta{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter")
	}

	users, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return FromModels(users), query.Page.MetaFor(total), nil
}

// Details loads one account. StoreOwner accounts carry their store summary so
// the admin view can show the owner's rating.
func (s *service) Details(ctx context.Context, id uuid.UUID) (*UserDetailsDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	details := &UserDetailsDTO{UserDTO: *FromModel(user)}
	if user.Role == enums.RoleStoreOwner {
		store, err := s.stores.FindByOwner(ctx, user.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owned store")
		}
		details.Store = ownedStoreFromModel(store)
	}
	return details, nil
}

// StoreOwners lists storeOwner accounts, used when registering a store.
func (s *service) StoreOwners(ctx context.Context) ([]UserDTO, error) {
	owners, err := s.repo.ListByRole(ctx, enums.RoleStoreOwner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store owners")
	}
	return FromModels(owners), nil
}

// DashboardStats returns the admin dashboard counters.
func (s *service) DashboardStats(ctx context.Context) (*DashboardStatsDTO, error) {
	userCount, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	storeCount, err := s.stores.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stores")
	}
	ratingCount, err := s.ratings.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count ratings")
	}
	return &DashboardStatsDTO{
		TotalUsers:   userCount,
		TotalStores:  storeCount,
		TotalRatings: ratingCount,
	}, nil
}
