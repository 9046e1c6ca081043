package repository

import (
	"context"
	"errors"
	"strings"

	"gitforum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	GetOrCreate(ctx context.Context, names []string) ([]models.Tag, error)
	List(ctx context.Context, limit int) ([]models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// GetOrCreate resolves tag names to rows, creating the missing ones. Names
// are lowercased and deduplicated; insert races resolve through ON CONFLICT
// plus re-read.
func (r *tagRepository) GetOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	normalized := make([]string, 0, len(names))
	seen := map[string]struct{}{}
	for _, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		normalized = append(normalized, n)
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	rows := make([]models.Tag, 0, len(normalized))
	for _, n := range normalized {
		rows = append(rows, models.Tag{Name: n})
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("name IN ?", normalized).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) List(ctx context.Context, limit int) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).
		Order("usage_count DESC, name ASC").
		Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", strings.ToLower(name)).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Tag", name)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}
