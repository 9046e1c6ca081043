package service

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"gitforum/internal/models"
	"gitforum/internal/repository"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

// UserService covers profile reads and edits. Registration and login live
// with the auth handlers since they own password hashing and tokens.
type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	UserID          uint
	DisplayName     *string
	Bio             *string
	Avatar          *string
	Location        *string
	Website         *string
	GithubUsername  *string
	TwitterUsername *string
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ValidUsername reports whether a username is acceptable: 3-30 characters
// of letters, digits, underscore or hyphen.
func ValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

func (s *UserService) GetProfile(ctx context.Context, userID, currentUserID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID, currentUserID)
}

func (s *UserService) GetByUsername(ctx context.Context, username string, currentUserID uint) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username, currentUserID)
}

// UpdateProfile applies a partial profile edit for the user's own account.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID, 0)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		if len(*in.DisplayName) > 100 {
			return nil, models.NewValidationError("Display name too long (max 100 characters)")
		}
		user.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.Bio != nil {
		if len(*in.Bio) > 500 {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Location != nil {
		user.Location = strings.TrimSpace(*in.Location)
	}
	if in.Website != nil {
		website := strings.TrimSpace(*in.Website)
		if website != "" {
			parsed, err := url.Parse(website)
			if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
				return nil, models.NewValidationError("Website must be an http(s) URL")
			}
		}
		user.Website = website
	}
	if in.GithubUsername != nil {
		user.GithubUsername = strings.TrimSpace(*in.GithubUsername)
	}
	if in.TwitterUsername != nil {
		user.TwitterUsername = strings.TrimSpace(*in.TwitterUsername)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int, currentUserID uint) ([]models.User, error) {
	limit, offset = clampPage(limit, offset)
	return s.userRepo.List(ctx, limit, offset, currentUserID)
}

func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	limit, offset = clampPage(limit, offset)
	return s.userRepo.Search(ctx, query, limit, offset, currentUserID)
}

// TopContributors returns the most prolific authors, capped at 20.
func (s *UserService) TopContributors(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 20 {
		limit = 10
	}
	return s.userRepo.TopContributors(ctx, limit)
}

func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.userRepo.Delete(ctx, userID)
}
