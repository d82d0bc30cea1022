package stores

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/pagination"
)

func setupStoresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  address TEXT NOT NULL,
  owner_id TEXT NOT NULL UNIQUE,
  average_rating REAL NOT NULL DEFAULT 0,
  total_ratings INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedStoreRecord(t *testing.T, repo Repository, name string, averageRating float64) *models.Store {
	t.Helper()
	store := &models.Store{
		Name:          name,
		Email:         fmt.Sprintf("%s@example.com", uuid.NewString()),
		Address:       "34 Market Road",
		OwnerID:       uuid.New(),
		AverageRating: averageRating,
	}
	require.NoError(t, repo.Create(context.Background(), store))
	return store
}

func TestStoreRepoCreateAndFindByOwner(t *testing.T) {
	repo := NewRepository(setupStoresTestDB(t))

	store := seedStoreRecord(t, repo, "Corner Grocery", 0)
	assert.NotEqual(t, uuid.Nil, store.ID)

	found, err := repo.FindByOwner(context.Background(), store.OwnerID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, store.ID, found.ID)

	missing, err := repo.FindByOwner(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreRepoFindByIDMissingReturnsNil(t *testing.T) {
	repo := NewRepository(setupStoresTestDB(t))

	found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestStoreRepoListFiltersByName(t *testing.T) {
	repo := NewRepository(setupStoresTestDB(t))

	marker := uuid.NewString()[:8]
	seedStoreRecord(t, repo, "Bakery "+marker, 0)
	seedStoreRecord(t, repo, "Butcher "+marker, 0)
	seedStoreRecord(t, repo, "Unrelated Shop", 0)

	list, total, err := repo.List(context.Background(), ListStoresQuery{
		Name: marker,
		Page: pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
}

func TestStoreRepoListSortsByAverageRating(t *testing.T) {
	repo := NewRepository(setupStoresTestDB(t))

	marker := uuid.NewString()[:8]
	low := seedStoreRecord(t, repo, "Low "+marker, 2.1)
	high := seedStoreRecord(t, repo, "High "+marker, 4.8)

	list, _, err := repo.List(context.Background(), ListStoresQuery{
		Name:      marker,
		SortField: "average_rating",
		SortOrder: "desc",
		Page:      pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, high.ID, list[0].ID)
	assert.Equal(t, low.ID, list[1].ID)
}

func TestStoreRepoListPaginates(t *testing.T) {
	repo := NewRepository(setupStoresTestDB(t))

	marker := uuid.NewString()[:8]
	for i := 0; i < 3; i++ {
		seedStoreRecord(t, repo, fmt.Sprintf("Paged %s %d", marker, i), 0)
	}

	list, total, err := repo.List(context.Background(), ListStoresQuery{
		Name: marker,
		Page: pagination.Params{Page: 2, Limit: 2},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 1)
}
