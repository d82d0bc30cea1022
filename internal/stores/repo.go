package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/pagination"
)

// sortableColumns is the allow-list for store list ordering.
var sortableColumns = map[string]string{
	"name":           "name",
	"email":          "email",
	"address":        "address",
	"average_rating": "average_rating",
	"total_ratings":  "total_ratings",
	"created_at":     "created_at",
}

// ListStoresQuery configures store list queries.
type ListStoresQuery struct {
	Name      string
	Email     string
	Address   string
	SortField string
	SortOrder string
	Page      pagination.Params
}

// Repository handles store persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, store *models.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	List(ctx context.Context, query ListStoresQuery) ([]models.Store, int64, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a store repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, store *models.Store) error {
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

func (r *repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

func (r *repository) List(ctx context.Context, query ListStoresQuery) ([]models.Store, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Store{})
	base = applyStoreFilters(base, query)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params := query.Page.Normalize()
	var stores []models.Store
	if err := base.
		Order(orderClause(query.SortField, query.SortOrder)).
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&stores).Error; err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Store{}).Count(&total).Error
	return total, err
}

func applyStoreFilters(query *gorm.DB, q ListStoresQuery) *gorm.DB {
	if name := strings.TrimSpace(q.Name); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if email := strings.TrimSpace(q.Email); email != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}
	if address := strings.TrimSpace(q.Address); address != "" {
		query = query.Where("LOWER(address) LIKE ?", "%"+strings.ToLower(address)+"%")
	}
	return query
}

func orderClause(field, order string) string {
	column, ok := sortableColumns[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if strings.EqualFold(strings.TrimSpace(order), "desc") {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}
