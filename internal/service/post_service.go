// Package service contains the application's business logic.
package service

import (
	"context"
	"strings"
	"time"

	"gitforum/internal/cache"
	"gitforum/internal/models"
	"gitforum/internal/repository"
)

const (
	maxTitleLen       = 200
	maxCodeLen        = 100000
	maxDescriptionLen = 2000
	maxTagsPerPost    = 5
	maxPostsPageSize  = 50
)

// PostService owns the post lifecycle: creation with fan-out, revisioned
// updates, listing and deletion.
type PostService struct {
	postRepo repository.PostRepository
	tagRepo  repository.TagRepository
	fanout   NotificationFanout
	revlog   RevisionLog
}

type CreatePostInput struct {
	AuthorID    uint
	Title       string
	Filename    string
	Language    string
	Code        string
	Description string
	IsPublic    bool
	Tags        []string
}

type UpdatePostInput struct {
	PostID        uint
	EditorID      uint
	Title         *string
	Code          *string
	Description   *string
	IsPublic      *bool
	Tags          []string
	CommitMessage string
}

type ListPostsInput struct {
	Limit    int
	Offset   int
	Sort     string
	Language string
	Tag      string
}

// NewPostService creates a new post service.
func NewPostService(
	postRepo repository.PostRepository,
	tagRepo repository.TagRepository,
	fanoutEngine NotificationFanout,
	revlog RevisionLog,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		tagRepo:  tagRepo,
		fanout:   fanoutEngine,
		revlog:   revlog,
	}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxPostsPageSize {
		limit = maxPostsPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func validatePostContent(title, code, description, language string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)")
	}
	if strings.TrimSpace(code) == "" {
		return models.NewValidationError("Code is required")
	}
	if len(code) > maxCodeLen {
		return models.NewValidationError("Code too long (max 100000 characters)")
	}
	if len(description) > maxDescriptionLen {
		return models.NewValidationError("Description too long (max 2000 characters)")
	}
	if !models.ValidLanguage(language) {
		return models.NewValidationError("Unknown language: " + language)
	}
	return nil
}

// CreatePost validates, persists and fans the new post out to the author's
// followers. Fan-out runs after the post transaction committed and cannot
// fail the creation.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePostContent(in.Title, in.Code, in.Description, in.Language); err != nil {
		return nil, err
	}
	if len(in.Tags) > maxTagsPerPost {
		return nil, models.NewValidationError("Too many tags (max 5)")
	}

	tags, err := s.tagRepo.GetOrCreate(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:    in.AuthorID,
		Title:       strings.TrimSpace(in.Title),
		Filename:    strings.TrimSpace(in.Filename),
		Language:    in.Language,
		Code:        in.Code,
		Description: in.Description,
		IsPublic:    in.IsPublic,
		Tags:        tags,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.fanout.PostPublished(ctx, post)

	return s.postRepo.GetByID(ctx, post.ID, in.AuthorID)
}

func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublic && post.AuthorID != currentUserID {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput, currentUserID uint) ([]*models.Post, error) {
	limit, offset := clampPage(in.Limit, in.Offset)
	return s.postRepo.List(ctx, repository.PostListOptions{
		Limit:    limit,
		Offset:   offset,
		Sort:     in.Sort,
		Language: in.Language,
		Tag:      in.Tag,
	}, currentUserID)
}

func (s *PostService) UserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	limit, offset = clampPage(limit, offset)
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

func (s *PostService) SearchPosts(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	limit, offset = clampPage(limit, offset)
	return s.postRepo.Search(ctx, query, limit, offset, currentUserID)
}

// TrendingPosts serves the hot list for a period of "day", "week" or
// "month". Anonymous results come from cache; personalized ones are always
// fresh because they carry per-user flags.
func (s *PostService) TrendingPosts(ctx context.Context, period string, limit int, currentUserID uint) ([]*models.Post, error) {
	var window time.Duration
	switch period {
	case "day", "":
		period, window = "day", 24*time.Hour
	case "week":
		window = 7 * 24 * time.Hour
	case "month":
		window = 30 * 24 * time.Hour
	default:
		return nil, models.NewValidationError("Unknown trending period: " + period)
	}
	limit, _ = clampPage(limit, 0)
	since := time.Now().Add(-window)

	if currentUserID != 0 {
		return s.postRepo.Trending(ctx, since, limit, currentUserID)
	}

	var posts []*models.Post
	err := cache.Aside(ctx, cache.TrendingKey(period), &posts, cache.TrendingTTL, func() error {
		var fetchErr error
		posts, fetchErr = s.postRepo.Trending(ctx, since, limit, 0)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost applies a partial edit. Every update records the pre-update
// state as a revision, in the same transaction as the post row update, so
// the history always holds what the edit replaced and the commit message
// is never dropped.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.EditorID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.EditorID {
		return nil, models.NewUnauthorizedError("You can only edit your own posts")
	}

	title := post.Title
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	code := post.Code
	if in.Code != nil {
		code = *in.Code
	}
	description := post.Description
	if in.Description != nil {
		description = *in.Description
	}
	if err := validatePostContent(title, code, description, post.Language); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"title":       title,
		"code":        code,
		"description": description,
	}
	if in.IsPublic != nil {
		fields["is_public"] = *in.IsPublic
	}
	if _, err := s.revlog.Append(ctx, post, in.EditorID, in.CommitMessage, fields); err != nil {
		return nil, err
	}

	if in.Tags != nil {
		tags, err := s.tagRepo.GetOrCreate(ctx, in.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.postRepo.ReplaceTags(ctx, post, tags); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetByID(ctx, post.ID, in.EditorID)
}

func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, post)
}

// ListRevisions returns the post's edit history newest-first.
func (s *PostService) ListRevisions(ctx context.Context, postID, currentUserID uint) ([]models.PostRevision, error) {
	if _, err := s.GetPost(ctx, postID, currentUserID); err != nil {
		return nil, err
	}
	return s.revlog.List(ctx, postID)
}

func (s *PostService) GetRevision(ctx context.Context, postID uint, number int, currentUserID uint) (*models.PostRevision, error) {
	if _, err := s.GetPost(ctx, postID, currentUserID); err != nil {
		return nil, err
	}
	return s.revlog.Get(ctx, postID, number)
}
