// Package fanout turns engagement events into notification rows. Emission is
// best effort: a failure here is logged and counted but never propagates to
// the operation that triggered it.
package fanout

import (
	"context"
	"log/slog"

	"gitforum/internal/middleware"
	"gitforum/internal/models"
	"gitforum/internal/observability"

	"gorm.io/gorm"
)

const (
	commentPreviewRunes = 100
	titlePreviewRunes   = 50
)

// Publisher pushes a realtime hint for a freshly persisted notification.
type Publisher interface {
	PublishNotification(ctx context.Context, n *models.Notification)
}

// Engine persists notifications for engagement events.
type Engine struct {
	db        *gorm.DB
	publisher Publisher
}

// NewEngine creates a fan-out engine. publisher may be nil when realtime
// delivery is disabled.
func NewEngine(db *gorm.DB, publisher Publisher) *Engine {
	return &Engine{db: db, publisher: publisher}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (e *Engine) emit(ctx context.Context, event string, n *models.Notification) {
	if err := e.db.WithContext(ctx).Create(n).Error; err != nil {
		observability.NotificationEmissionFailures.WithLabelValues(event).Inc()
		middleware.Logger.Error("notification emission failed",
			slog.String("event", event),
			slog.Uint64("recipient_id", uint64(n.RecipientID)),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.NotificationsEmitted.WithLabelValues(event).Inc()
	if e.publisher != nil {
		e.publisher.PublishNotification(ctx, n)
	}
}

// PostLiked notifies the post's author that actorID liked their post. A
// self-like is suppressed.
func (e *Engine) PostLiked(ctx context.Context, actorID uint, post *models.Post) {
	if actorID == post.AuthorID {
		return
	}
	postID := post.ID
	e.emit(ctx, "like", &models.Notification{
		RecipientID: post.AuthorID,
		SenderID:    actorID,
		Type:        models.NotificationLike,
		PostID:      &postID,
	})
}

// CommentCreated emits the notifications for a new comment. A reply notifies
// the parent comment's author unless they wrote the reply themselves; the
// post's author is additionally notified unless they wrote the comment, or
// they already received the reply notification as the parent's author.
func (e *Engine) CommentCreated(ctx context.Context, comment *models.Comment, post *models.Post, parent *models.Comment) {
	postID := post.ID
	commentID := comment.ID
	preview := truncateRunes(comment.Content, commentPreviewRunes)

	if parent != nil && parent.AuthorID != comment.AuthorID {
		e.emit(ctx, "reply", &models.Notification{
			RecipientID: parent.AuthorID,
			SenderID:    comment.AuthorID,
			Type:        models.NotificationReply,
			PostID:      &postID,
			CommentID:   &commentID,
			Message:     preview,
		})
	}

	if post.AuthorID != comment.AuthorID {
		if parent == nil || parent.AuthorID != post.AuthorID {
			e.emit(ctx, "comment", &models.Notification{
				RecipientID: post.AuthorID,
				SenderID:    comment.AuthorID,
				Type:        models.NotificationComment,
				PostID:      &postID,
				CommentID:   &commentID,
				Message:     preview,
			})
		}
	}
}

// UserFollowed notifies followingID that followerID now follows them. A
// self-follow is suppressed.
func (e *Engine) UserFollowed(ctx context.Context, followerID, followingID uint) {
	if followerID == followingID {
		return
	}
	e.emit(ctx, "follow", &models.Notification{
		RecipientID: followingID,
		SenderID:    followerID,
		Type:        models.NotificationFollow,
	})
}

// PostPublished fans a new-post notification out to every follower of the
// author. Private posts fan out to nobody.
func (e *Engine) PostPublished(ctx context.Context, post *models.Post) {
	if !post.IsPublic {
		return
	}

	var followerIDs []uint
	err := e.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", post.AuthorID).
		Pluck("follower_id", &followerIDs).Error
	if err != nil {
		observability.NotificationEmissionFailures.WithLabelValues("new_post").Inc()
		middleware.Logger.Error("failed to load followers for fan-out",
			slog.Uint64("author_id", uint64(post.AuthorID)),
			slog.String("error", err.Error()),
		)
		return
	}
	if len(followerIDs) == 0 {
		return
	}

	postID := post.ID
	message := "New post: " + truncateRunes(post.Title, titlePreviewRunes)
	batch := make([]models.Notification, 0, len(followerIDs))
	for _, followerID := range followerIDs {
		batch = append(batch, models.Notification{
			RecipientID: followerID,
			SenderID:    post.AuthorID,
			Type:        models.NotificationNewPost,
			PostID:      &postID,
			Message:     message,
		})
	}

	if err := e.db.WithContext(ctx).Create(&batch).Error; err != nil {
		observability.NotificationEmissionFailures.WithLabelValues("new_post").Inc()
		middleware.Logger.Error("new-post fan-out failed",
			slog.Uint64("author_id", uint64(post.AuthorID)),
			slog.Int("followers", len(followerIDs)),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.NotificationsEmitted.WithLabelValues("new_post").Add(float64(len(batch)))
	if e.publisher != nil {
		for i := range batch {
			e.publisher.PublishNotification(ctx, &batch[i])
		}
	}
}
