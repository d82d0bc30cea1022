package ratings

import (
	"context"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ratehub/ratehub-backend/pkg/db/models"
)

// RoundAverage rounds a mean rating to one decimal place, half away from
// zero, so 4.35 becomes 4.4.
func RoundAverage(mean float64) float64 {
	return math.Round(mean*10) / 10
}

// RecomputeStoreAggregates refreshes average_rating and total_ratings on the
// store row from the ratings table. It must run inside the same transaction
// as the rating mutation so readers never observe stale aggregates. A store
// with no ratings gets (0, 0); a missing store is a no-op.
func RecomputeStoreAggregates(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) error {
	var stats struct {
		Total int64
		Mean  *float64
	}
	if err := tx.WithContext(ctx).
		Model(&models.Rating{}).
		Select("COUNT(*) AS total, AVG(value) AS mean").
		Where("store_id = ?", storeID).
		Scan(&stats).Error; err != nil {
		return err
	}

	average := 0.0
	if stats.Total > 0 && stats.Mean != nil {
		average = RoundAverage(*stats.Mean)
	}

	return tx.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Updates(map[string]any{
			"average_rating": average,
			"total_ratings":  stats.Total,
		}).Error
}
