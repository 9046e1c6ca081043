package service

import (
	"context"

	"gitforum/internal/models"
)

// NotificationFanout is the slice of the fan-out engine the services need.
// Fan-out is best-effort: none of these methods return errors, so a failed
// notification never fails the write that triggered it.
type NotificationFanout interface {
	PostLiked(ctx context.Context, actorID uint, post *models.Post)
	CommentCreated(ctx context.Context, comment *models.Comment, post *models.Post, parent *models.Comment)
	UserFollowed(ctx context.Context, followerID, followingID uint)
	PostPublished(ctx context.Context, post *models.Post)
}

// RevisionLog records and reads per-post edit history. Append couples the
// snapshot with the post row update in one transaction.
type RevisionLog interface {
	Append(ctx context.Context, post *models.Post, editorID uint, commitMessage string, fields map[string]interface{}) (*models.PostRevision, error)
	List(ctx context.Context, postID uint) ([]models.PostRevision, error)
	Get(ctx context.Context, postID uint, number int) (*models.PostRevision, error)
}
