package repository

import (
	"context"

	"gitforum/internal/cache"
	"gitforum/internal/counters"
	"gitforum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository persists likes, bookmarks and views. Every write
// pairs the relationship-row change with its counter update in one
// transaction, and reports whether the row actually changed so callers can
// distinguish a fresh action from an idempotent repeat.
type EngagementRepository interface {
	RecordLike(ctx context.Context, userID, postID uint) (bool, error)
	RemoveLike(ctx context.Context, userID, postID uint) (bool, error)
	RecordBookmark(ctx context.Context, userID, postID uint) (bool, error)
	RemoveBookmark(ctx context.Context, userID, postID uint) (bool, error)
	RecordView(ctx context.Context, postID uint, userID *uint, sessionKey, ip string) (bool, error)
}

type engagementRepository struct {
	db       *gorm.DB
	counters *counters.Engine
}

// NewEngagementRepository creates a new engagement repository.
func NewEngagementRepository(db *gorm.DB, engine *counters.Engine) EngagementRepository {
	return &engagementRepository{db: db, counters: engine}
}

// RecordLike inserts the like with ON CONFLICT DO NOTHING and increments the
// post's likes_count only when a row was actually inserted. Returns false
// for a repeat like.
func (r *engagementRepository) RecordLike(ctx context.Context, userID, postID uint) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).Create(&models.Like{UserID: userID, PostID: postID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return r.counters.Increment(tx, &models.Post{}, postID, "likes_count", 1)
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if created {
		cache.InvalidatePost(ctx, postID)
	}
	return created, nil
}

// RemoveLike deletes the like and applies the guarded decrement only when a
// row was actually removed. Returns false when no like existed.
func (r *engagementRepository) RemoveLike(ctx context.Context, userID, postID uint) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return r.counters.Decrement(tx, &models.Post{}, postID, "likes_count")
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if removed {
		cache.InvalidatePost(ctx, postID)
	}
	return removed, nil
}

func (r *engagementRepository) RecordBookmark(ctx context.Context, userID, postID uint) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).Create(&models.Bookmark{UserID: userID, PostID: postID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return r.counters.Increment(tx, &models.Post{}, postID, "bookmarks_count", 1)
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if created {
		cache.InvalidatePost(ctx, postID)
	}
	return created, nil
}

func (r *engagementRepository) RemoveBookmark(ctx context.Context, userID, postID uint) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return r.counters.Decrement(tx, &models.Post{}, postID, "bookmarks_count")
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if removed {
		cache.InvalidatePost(ctx, postID)
	}
	return removed, nil
}

// RecordView dedups on the strongest identity available (user, then
// session, then IP) and bumps the post's views only for a first view from
// that identity. A request with no identity at all is ignored.
func (r *engagementRepository) RecordView(ctx context.Context, postID uint, userID *uint, sessionKey, ip string) (bool, error) {
	identityKey := models.ViewIdentityKey(userID, sessionKey, ip)
	if identityKey == "" {
		return false, nil
	}

	view := &models.PostView{
		PostID:      postID,
		IdentityKey: identityKey,
		UserID:      userID,
		SessionKey:  sessionKey,
		IPAddress:   ip,
	}

	counted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "identity_key"}},
			DoNothing: true,
		}).Create(view)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		counted = true
		return r.counters.Increment(tx, &models.Post{}, postID, "views", 1)
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return counted, nil
}
