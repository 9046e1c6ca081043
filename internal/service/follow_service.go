package service

import (
	"context"

	"gitforum/internal/models"
	"gitforum/internal/repository"
)

// FollowService manages the follow graph.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	fanout     NotificationFanout
}

// NewFollowService creates a new follow service.
func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	fanoutEngine NotificationFanout,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		fanout:     fanoutEngine,
	}
}

// FollowUser makes followerID follow followingID. Following yourself is
// rejected; re-following someone you already follow is a quiet no-op.
func (s *FollowService) FollowUser(ctx context.Context, followerID, followingID uint) (bool, error) {
	if followerID == followingID {
		return false, models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, followingID, 0); err != nil {
		return false, err
	}
	created, err := s.followRepo.Follow(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	if created {
		s.fanout.UserFollowed(ctx, followerID, followingID)
	}
	return created, nil
}

func (s *FollowService) UnfollowUser(ctx context.Context, followerID, followingID uint) (bool, error) {
	if followerID == followingID {
		return false, models.NewValidationError("You cannot unfollow yourself")
	}
	return s.followRepo.Unfollow(ctx, followerID, followingID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followingID)
}

func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	limit, offset = clampPage(limit, offset)
	return s.followRepo.Followers(ctx, userID, limit, offset)
}

func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	limit, offset = clampPage(limit, offset)
	return s.followRepo.Following(ctx, userID, limit, offset)
}
