package repository

import (
	"context"
	"testing"

	"gitforum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateNormalizesAndDedups(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	tags, err := repo.GetOrCreate(ctx, []string{"Go", " go ", "CLI", ""})
	require.NoError(t, err)
	require.Len(t, tags, 2)

	names := map[string]bool{}
	for _, tag := range tags {
		names[tag.Name] = true
	}
	assert.True(t, names["go"])
	assert.True(t, names["cli"])

	// A second call reuses the existing rows.
	again, err := repo.GetOrCreate(ctx, []string{"go", "web"})
	require.NoError(t, err)
	require.Len(t, again, 2)

	var total int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&total).Error)
	assert.EqualValues(t, 3, total)
}

func TestTagListOrdersByUsage(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Tag{Name: "rare", UsageCount: 1}).Error)
	require.NoError(t, db.Create(&models.Tag{Name: "popular", UsageCount: 9}).Error)

	tags, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "popular", tags[0].Name)
}

func TestGetByName(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Tag{Name: "go"}).Error)

	tag, err := repo.GetByName(ctx, "GO")
	require.NoError(t, err)
	assert.Equal(t, "go", tag.Name)

	_, err = repo.GetByName(ctx, "missing")
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
