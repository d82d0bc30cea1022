package ratings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ratehub/ratehub-backend/pkg/db"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/pagination"
)

const (
	userStoreConstraint = "idx_ratings_user_store"
	userStoreColumns    = "ratings.user_id"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type storeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Service exposes rating operations for authenticated users.
type Service interface {
	Submit(ctx context.Context, userID, storeID uuid.UUID, value int) (*RatingDTO, bool, error)
	GetOwn(ctx context.Context, userID, storeID uuid.UUID) (*RatingDTO, error)
	Delete(ctx context.Context, userID, storeID uuid.UUID) error
	ListForStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]StoreRatingDTO, pagination.Meta, error)
}

type service struct {
	tx     txRunner
	repo   Repository
	stores storeFinder
}

// NewService builds a rating service with the provided dependencies.
func NewService(tx txRunner, repo Repository, stores storeFinder) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("rating repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store finder required")
	}
	return &service{tx: tx, repo: repo, stores: stores}, nil
}

// Submit records or replaces the caller's rating for a store. The store
// aggregates are recomputed in the same transaction. The bool result reports
// whether a new rating row was created.
func (s *service) Submit(ctx context.Context, userID, storeID uuid.UUID, value int) (*RatingDTO, bool, error) {
	if value < 1 || value > 5 {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "rating value must be between 1 and 5")
	}

	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if store == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}

	var (
		result  *models.Rating
		created bool
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByUserAndStore(ctx, userID, storeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup rating")
		}

		switch {
		case existing == nil:
			rating := &models.Rating{UserID: userID, StoreID: storeID, Value: value}
			if err := repo.Create(ctx, rating); err != nil {
				if !db.IsUniqueViolation(err, userStoreConstraint, userStoreColumns) {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rating")
				}
				// Lost a race with a concurrent submit; fall back to update.
				raced, lookupErr := repo.FindByUserAndStore(ctx, userID, storeID)
				if lookupErr != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, lookupErr, "reload rating")
				}
				if raced == nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rating")
				}
				raced.Value = value
				if err := repo.Update(ctx, raced); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rating")
				}
				result = raced
			} else {
				result = rating
				created = true
			}
		default:
			existing.Value = value
			if err := repo.Update(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rating")
			}
			result = existing
		}

		if err := RecomputeStoreAggregates(ctx, tx, storeID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute aggregates")
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return FromModel(result), created, nil
}

// GetOwn returns the caller's rating for the store, or nil when the caller
// has not rated it.
func (s *service) GetOwn(ctx context.Context, userID, storeID uuid.UUID) (*RatingDTO, error) {
	rating, err := s.repo.FindByUserAndStore(ctx, userID, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup rating")
	}
	if rating == nil {
		return nil, nil
	}
	return FromModel(rating), nil
}

// Delete removes the caller's rating and recomputes the store aggregates.
func (s *service) Delete(ctx context.Context, userID, storeID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.DeleteByUserAndStore(ctx, userID, storeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete rating")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "rating not found")
		}

		if err := RecomputeStoreAggregates(ctx, tx, storeID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute aggregates")
		}
		return nil
	})
}

// ListForStore returns the ratings submitted for a store with submitter info.
func (s *service) ListForStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]StoreRatingDTO, pagination.Meta, error) {
	rows, total, err := s.repo.ListByStore(ctx, storeID, params)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ratings")
	}
	return FromRows(rows), params.MetaFor(total), nil
}
