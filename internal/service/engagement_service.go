package service

import (
	"context"

	"gitforum/internal/models"
	"gitforum/internal/repository"
)

// EngagementService covers likes, bookmarks and view recording. All of
// these are idempotent from the caller's point of view: repeating an
// action that already holds is a quiet no-op.
type EngagementService struct {
	engagementRepo repository.EngagementRepository
	postRepo       repository.PostRepository
	fanout         NotificationFanout
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(
	engagementRepo repository.EngagementRepository,
	postRepo repository.PostRepository,
	fanoutEngine NotificationFanout,
) *EngagementService {
	return &EngagementService{
		engagementRepo: engagementRepo,
		postRepo:       postRepo,
		fanout:         fanoutEngine,
	}
}

func (s *EngagementService) visiblePost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublic && post.AuthorID != userID {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

// LikePost records a like. The author only gets a notification the first
// time: a repeated like changes nothing and notifies nobody.
func (s *EngagementService) LikePost(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	created, err := s.engagementRepo.RecordLike(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if created {
		s.fanout.PostLiked(ctx, userID, post)
	}
	return created, nil
}

func (s *EngagementService) UnlikePost(ctx context.Context, userID, postID uint) (bool, error) {
	if _, err := s.visiblePost(ctx, postID, userID); err != nil {
		return false, err
	}
	return s.engagementRepo.RemoveLike(ctx, userID, postID)
}

func (s *EngagementService) BookmarkPost(ctx context.Context, userID, postID uint) (bool, error) {
	if _, err := s.visiblePost(ctx, postID, userID); err != nil {
		return false, err
	}
	return s.engagementRepo.RecordBookmark(ctx, userID, postID)
}

func (s *EngagementService) UnbookmarkPost(ctx context.Context, userID, postID uint) (bool, error) {
	if _, err := s.visiblePost(ctx, postID, userID); err != nil {
		return false, err
	}
	return s.engagementRepo.RemoveBookmark(ctx, userID, postID)
}

func (s *EngagementService) BookmarkedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	limit, offset = clampPage(limit, offset)
	return s.postRepo.Bookmarked(ctx, userID, limit, offset)
}

// RecordView counts a view, deduplicated by the strongest identity
// available: authenticated user, then session key, then client IP. With no
// identity at all the view is dropped rather than guessed.
func (s *EngagementService) RecordView(ctx context.Context, postID uint, userID *uint, sessionKey, ip string) (bool, error) {
	var viewerID uint
	if userID != nil {
		viewerID = *userID
	}
	if _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return false, err
	}
	return s.engagementRepo.RecordView(ctx, postID, userID, sessionKey, ip)
}
