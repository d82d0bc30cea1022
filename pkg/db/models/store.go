package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is owned by exactly one storeOwner user. AverageRating and
// TotalRatings are derived from the ratings table and are only ever written by
// the aggregator, never edited directly.
type Store struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Email         string    `gorm:"type:text;not null;uniqueIndex"`
	Address       string    `gorm:"column:address;not null"`
	OwnerID       uuid.UUID `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	AverageRating float64   `gorm:"column:average_rating;not null;default:0"`
	TotalRatings  int64     `gorm:"column:total_ratings;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
