package ratings

import (
	"time"

	"github.com/google/uuid"

	"github.com/ratehub/ratehub-backend/pkg/db/models"
)

// RatingDTO is the transport shape for a single rating.
type RatingDTO struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoreRatingDTO is a rating with the submitting user attached, shown on the
// owner dashboard.
type StoreRatingDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Value     int       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromModel(rating *models.Rating) *RatingDTO {
	if rating == nil {
		return nil
	}
	return &RatingDTO{
		ID:        rating.ID,
		StoreID:   rating.StoreID,
		Value:     rating.Value,
		CreatedAt: rating.CreatedAt,
		UpdatedAt: rating.UpdatedAt,
	}
}

func fromRow(row StoreRatingRow) StoreRatingDTO {
	return StoreRatingDTO{
		ID:        row.RatingID,
		UserID:    row.UserID,
		UserName:  row.UserName,
		UserEmail: row.UserEmail,
		Value:     row.Value,
		UpdatedAt: row.UpdatedAt,
	}
}

// FromRows converts repository rows to their transport shape.
func FromRows(rows []StoreRatingRow) []StoreRatingDTO {
	dtos := make([]StoreRatingDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, fromRow(row))
	}
	return dtos
}
