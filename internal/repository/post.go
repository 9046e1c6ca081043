package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gitforum/internal/cache"
	"gitforum/internal/counters"
	"gitforum/internal/models"

	"gorm.io/gorm"
)

// PostListOptions narrows and orders post listings.
type PostListOptions struct {
	Limit    int
	Offset   int
	Sort     string // "new", "top", "views"
	Language string
	Tag      string
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	List(ctx context.Context, opts PostListOptions, currentUserID uint) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error)
	Trending(ctx context.Context, since time.Time, limit int, currentUserID uint) ([]*models.Post, error)
	Bookmarked(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error
	Delete(ctx context.Context, post *models.Post) error
}

type postRepository struct {
	db       *gorm.DB
	counters *counters.Engine
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB, engine *counters.Engine) PostRepository {
	return &postRepository{db: db, counters: engine}
}

// applyPostDetails adds the requesting user's liked/bookmarked flags in the
// same query. Counter columns are served straight from the posts row.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	if currentUserID != 0 {
		return db.Select(
			"posts.*, "+
				"EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked, "+
				"EXISTS(SELECT 1 FROM bookmarks WHERE bookmarks.post_id = posts.id AND bookmarks.user_id = ?) AS bookmarked",
			currentUserID, currentUserID,
		)
	}
	return db.Select("posts.*, FALSE AS liked, FALSE AS bookmarked")
}

// visibleTo filters out other users' private posts.
func (r *postRepository) visibleTo(db *gorm.DB, currentUserID uint) *gorm.DB {
	if currentUserID != 0 {
		return db.Where("posts.is_public = ? OR posts.author_id = ?", true, currentUserID)
	}
	return db.Where("posts.is_public = ?", true)
}

// Create inserts the post, its tag attachments and the author's posts_count
// increment in one transaction.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if err := r.counters.Increment(tx, &models.User{}, post.AuthorID, "posts_count", 1); err != nil {
			return err
		}
		for _, tag := range post.Tags {
			if err := r.counters.Increment(tx, &models.Tag{}, tag.ID, "usage_count", 1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Tags").
		First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	base := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Tags").
		Where("posts.author_id = ?", userID)
	if currentUserID != userID {
		base = base.Where("posts.is_public = ?", true)
	}
	err := base.Order("posts.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, opts PostListOptions, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	base := r.visibleTo(r.applyPostDetails(r.db.WithContext(ctx), currentUserID), currentUserID).
		Preload("Author").
		Preload("Tags")

	if opts.Language != "" {
		base = base.Where("posts.language = ?", opts.Language)
	}
	if opts.Tag != "" {
		base = base.
			Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name = ?", strings.ToLower(opts.Tag))
	}

	switch opts.Sort {
	case "top":
		base = base.Order("posts.likes_count DESC, posts.created_at DESC")
	case "views":
		base = base.Order("posts.views DESC, posts.created_at DESC")
	default: // "new" and anything unrecognized
		base = base.Order("posts.created_at DESC")
	}

	err := base.Limit(opts.Limit).Offset(opts.Offset).Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	like := "%" + strings.ToLower(query) + "%"
	err := r.visibleTo(r.applyPostDetails(r.db.WithContext(ctx), currentUserID), currentUserID).
		Preload("Author").
		Preload("Tags").
		Where("LOWER(posts.title) LIKE ? OR LOWER(posts.description) LIKE ? OR LOWER(posts.code) LIKE ?", like, like, like).
		Order("posts.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Trending(ctx context.Context, since time.Time, limit int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.visibleTo(r.applyPostDetails(r.db.WithContext(ctx), currentUserID), currentUserID).
		Preload("Author").
		Preload("Tags").
		Where("posts.created_at > ?", since).
		Order("(posts.likes_count * 3 + posts.comments_count * 2 + posts.views) DESC, posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Bookmarked(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), userID).
		Preload("Author").
		Preload("Tags").
		Joins("JOIN bookmarks ON bookmarks.post_id = posts.id").
		Where("bookmarks.user_id = ?", userID).
		Order("bookmarks.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ReplaceTags swaps the post's tag set and keeps every touched tag's
// usage_count in step, all in one transaction.
func (r *postRepository) ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	old := make(map[uint]bool, len(post.Tags))
	for _, t := range post.Tags {
		old[t.ID] = true
	}
	next := make(map[uint]bool, len(tags))
	for _, t := range tags {
		next[t.ID] = true
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
			return err
		}
		for id := range next {
			if !old[id] {
				if err := r.counters.Increment(tx, &models.Tag{}, id, "usage_count", 1); err != nil {
					return err
				}
			}
		}
		for id := range old {
			if !next[id] {
				if err := r.counters.Decrement(tx, &models.Tag{}, id, "usage_count"); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	post.Tags = tags
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete soft-deletes the post and rolls the author's posts_count and the
// attached tags' usage_count back in the same transaction.
func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Post{}, post.ID).Error; err != nil {
			return err
		}
		if err := r.counters.Decrement(tx, &models.User{}, post.AuthorID, "posts_count"); err != nil {
			return err
		}
		for _, tag := range post.Tags {
			if err := r.counters.Decrement(tx, &models.Tag{}, tag.ID, "usage_count"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	cache.InvalidatePostsList(ctx)
	return nil
}
