// Package revisions keeps the per-post edit history. Revision numbers are
// 1-based and gap-free for each post: in-process writers are serialized on a
// striped mutex, and the (post_id, revision_number) unique index backstops
// races with other processes.
package revisions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gitforum/internal/cache"
	"gitforum/internal/middleware"
	"gitforum/internal/models"
	"gitforum/internal/observability"

	"gorm.io/gorm"
)

const (
	numStripes  = 64
	maxAttempts = 3
)

// Log records and serves post revision snapshots.
type Log struct {
	db      *gorm.DB
	stripes [numStripes]sync.Mutex
}

// NewLog creates a revision log bound to the given database handle. The
// handle must have been opened with TranslateError so unique violations
// surface as gorm.ErrDuplicatedKey.
func NewLog(db *gorm.DB) *Log {
	return &Log{db: db}
}

// sequenceError marks a post update that failed after its snapshot was
// written inside the same transaction. The rollback removes the snapshot,
// but the partial failure still warrants alerting.
type sequenceError struct {
	err error
}

func (e *sequenceError) Error() string {
	return fmt.Sprintf("post update failed after revision snapshot: %v", e.err)
}

func (e *sequenceError) Unwrap() error { return e.err }

// Append snapshots the post's pre-update content as its next revision and
// applies the field update to the posts row, both in one transaction: if
// either write fails nothing is visible. Each attempt is its own short
// transaction; when a concurrent writer in another process takes the number
// first, the attempt is retried with a fresh number.
func (l *Log) Append(ctx context.Context, post *models.Post, editorID uint, commitMessage string, fields map[string]interface{}) (*models.PostRevision, error) {
	stripe := &l.stripes[post.ID%numStripes]
	stripe.Lock()
	defer stripe.Unlock()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		rev := &models.PostRevision{
			PostID:        post.ID,
			AuthorID:      editorID,
			Title:         post.Title,
			Code:          post.Code,
			Description:   post.Description,
			CommitMessage: commitMessage,
		}

		err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var current int
			if err := tx.Model(&models.PostRevision{}).
				Where("post_id = ?", post.ID).
				Select("COALESCE(MAX(revision_number), 0)").
				Scan(&current).Error; err != nil {
				return err
			}
			rev.RevisionNumber = current + 1
			if err := tx.Create(rev).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
				Updates(fields).Error; err != nil {
				return &sequenceError{err: err}
			}
			return nil
		})
		if err == nil {
			cache.InvalidatePost(ctx, post.ID)
			return rev, nil
		}

		var seqErr *sequenceError
		if errors.As(err, &seqErr) {
			observability.RevisionSequenceFailures.Inc()
			middleware.Logger.Error("post update failed after revision snapshot, rolled back",
				slog.Uint64("post_id", uint64(post.ID)),
				slog.String("error", seqErr.err.Error()),
			)
			return nil, models.NewInternalError(seqErr)
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewInternalError(err)
		}

		middleware.Logger.Warn("revision number taken by concurrent writer, retrying",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.Int("attempt", attempt),
		)
	}

	return nil, models.NewConflictError("could not allocate a revision number, please retry")
}

// List returns the post's revisions newest-first.
func (l *Log) List(ctx context.Context, postID uint) ([]models.PostRevision, error) {
	var revs []models.PostRevision
	err := l.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("revision_number DESC").
		Find(&revs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return revs, nil
}

// Get returns a single revision of a post by its number.
func (l *Log) Get(ctx context.Context, postID uint, number int) (*models.PostRevision, error) {
	var rev models.PostRevision
	err := l.db.WithContext(ctx).
		Where("post_id = ? AND revision_number = ?", postID, number).
		First(&rev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Revision", number)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &rev, nil
}
