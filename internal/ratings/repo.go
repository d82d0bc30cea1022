package ratings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/pagination"
)

// StoreRatingRow is a rating joined with the submitting user, used for the
// store owner dashboard.
type StoreRatingRow struct {
	RatingID  uuid.UUID `gorm:"column:rating_id"`
	UserID    uuid.UUID `gorm:"column:user_id"`
	UserName  string    `gorm:"column:user_name"`
	UserEmail string    `gorm:"column:user_email"`
	Value     int       `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// Repository handles rating persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUserAndStore(ctx context.Context, userID, storeID uuid.UUID) (*models.Rating, error)
	Create(ctx context.Context, rating *models.Rating) error
	Update(ctx context.Context, rating *models.Rating) error
	DeleteByUserAndStore(ctx context.Context, userID, storeID uuid.UUID) (int64, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]StoreRatingRow, int64, error)
	MapByUserAndStores(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) (map[uuid.UUID]int, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a rating repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByUserAndStore(ctx context.Context, userID, storeID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&rating).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

func (r *repository) Create(ctx context.Context, rating *models.Rating) error {
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *repository) Update(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Save(rating).Error
}

func (r *repository) DeleteByUserAndStore(ctx context.Context, userID, storeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Delete(&models.Rating{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]StoreRatingRow, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("store_id = ?", storeID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []StoreRatingRow
	if err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("ratings.id AS rating_id, ratings.user_id, users.name AS user_name, users.email AS user_email, ratings.value, ratings.updated_at").
		Joins("JOIN users ON users.id = ratings.user_id").
		Where("ratings.store_id = ?", storeID).
		Order("ratings.updated_at DESC, ratings.id DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) MapByUserAndStores(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	result := make(map[uuid.UUID]int, len(storeIDs))
	if len(storeIDs) == 0 {
		return result, nil
	}

	var ratings []models.Rating
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id IN ?", userID, storeIDs).
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	for _, rating := range ratings {
		result[rating.StoreID] = rating.Value
	}
	return result, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Rating{}).Count(&total).Error
	return total, err
}
