package stores

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ratehub/ratehub-backend/internal/ratings"
	"github.com/ratehub/ratehub-backend/pkg/db"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/pagination"
)

const (
	emailConstraint = "idx_stores_email"
	emailColumns    = "stores.email"
	ownerConstraint = "idx_stores_owner"
	ownerColumns    = "stores.owner_id"
)

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type ratingAnnotator interface {
	MapByUserAndStores(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type ratingLister interface {
	ListForStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]ratings.StoreRatingDTO, pagination.Meta, error)
}

// CreateStoreInput captures the data required to register a store.
type CreateStoreInput struct {
	Name    string
	Email   string
	Address string
	OwnerID uuid.UUID
}

// OwnerDashboardDTO is the store owner's view of their own store.
type OwnerDashboardDTO struct {
	Store   *StoreDTO                `json:"store"`
	Ratings []ratings.StoreRatingDTO `json:"ratings"`
	Meta    pagination.Meta          `json:"meta"`
}

// Service exposes store operations.
type Service interface {
	Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error)
	GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*StoreDTO, error)
	List(ctx context.Context, query ListStoresQuery, viewerID *uuid.UUID) ([]StoreDTO, pagination.Meta, error)
	OwnerDashboard(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*OwnerDashboardDTO, error)
}

type service struct {
	repo          Repository
	users         userFinder
	ratingsByUser ratingAnnotator
	ratingsList   ratingLister
}

// NewService builds a store service with the provided dependencies.
func NewService(repo Repository, users userFinder, annotator ratingAnnotator, lister ratingLister) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if annotator == nil {
		return nil, fmt.Errorf("rating annotator required")
	}
	if lister == nil {
		return nil, fmt.Errorf("rating lister required")
	}
	return &service{
		repo:          repo,
		users:         users,
		ratingsByUser: annotator,
		ratingsList:   lister,
	}, nil
}

// Create registers a store for an existing storeOwner account. An owner can
// hold at most one store, enforced by the unique index on owner_id.
func (s *service) Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error) {
	owner, err := s.users.FindByID(ctx, input.OwnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner")
	}
	if owner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "owner account not found")
	}
	if owner.Role != enums.RoleStoreOwner {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner must hold the storeOwner role")
	}

	store := &models.Store{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Address: strings.TrimSpace(input.Address),
		OwnerID: input.OwnerID,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		switch {
		case db.IsUniqueViolation(err, ownerConstraint, ownerColumns):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "owner already has a store")
		case db.IsUniqueViolation(err, emailConstraint, emailColumns):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store email already in use")
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
		}
	}
	return FromModel(store), nil
}

// GetByID loads one store. When viewerID is set, the caller's own rating is
// attached.
func (s *service) GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}

	dto := FromModel(store)
	if viewerID != nil {
		byStore, err := s.ratingsByUser.MapByUserAndStores(ctx, *viewerID, []uuid.UUID{store.ID})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load viewer rating")
		}
		if value, ok := byStore[store.ID]; ok {
			dto.UserRating = &value
		}
	}
	return dto, nil
}

// List returns stores matching the query. When viewerID is set, each store is
// annotated with the caller's own rating.
func (s *service) List(ctx context.Context, query ListStoresQuery, viewerID *uuid.UUID) ([]StoreDTO, pagination.Meta, error) {
	stores, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}

	dtos := make([]StoreDTO, 0, len(stores))
	for i := range stores {
		dtos = append(dtos, *FromModel(&stores[i]))
	}

	if viewerID != nil && len(dtos) > 0 {
		ids := make([]uuid.UUID, 0, len(dtos))
		for _, dto := range dtos {
			ids = append(ids, dto.ID)
		}
		byStore, err := s.ratingsByUser.MapByUserAndStores(ctx, *viewerID, ids)
		if err != nil {
			return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load viewer ratings")
		}
		for i := range dtos {
			if value, ok := byStore[dtos[i].ID]; ok {
				v := value
				dtos[i].UserRating = &v
			}
		}
	}

	return dtos, query.Page.MetaFor(total), nil
}

// OwnerDashboard returns the caller's store with its raters.
func (s *service) OwnerDashboard(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*OwnerDashboardDTO, error) {
	store, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no store registered for this account")
	}

	raters, meta, err := s.ratingsList.ListForStore(ctx, store.ID, params)
	if err != nil {
		return nil, err
	}

	return &OwnerDashboardDTO{
		Store:   FromModel(store),
		Ratings: raters,
		Meta:    meta,
	}, nil
}
