package service

import (
	"context"
	"sort"
	"strings"

	"gitforum/internal/models"
	"gitforum/internal/repository"
)

const (
	maxCommentLen = 2000

	// Presentation caps for the threaded view. Storage keeps the full
	// tree; the serialization stops descending past maxTreeDepth and
	// trims each reply list to maxSiblings, reporting the true count in
	// RepliesCount.
	maxTreeDepth = 5
	maxSiblings  = 20
)

// CommentService owns comment creation, the threaded read serialization and
// comment moderation by the author.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	fanout      NotificationFanout
}

type CreateCommentInput struct {
	AuthorID uint
	PostID   uint
	ParentID *uint
	Content  string
}

type UpdateCommentInput struct {
	CommentID uint
	AuthorID  uint
	Content   string
}

// NewCommentService creates a new comment service.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	fanoutEngine NotificationFanout,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		fanout:      fanoutEngine,
	}
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 2000 characters)")
	}
	return nil
}

// CreateComment validates the target post and optional parent, persists the
// comment and fans out notifications.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, in.AuthorID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublic && post.AuthorID != in.AuthorID {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	var parent *models.Comment
	if in.ParentID != nil {
		parent, err = s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		AuthorID: in.AuthorID,
		ParentID: in.ParentID,
		Content:  in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.fanout.CommentCreated(ctx, comment, post, parent)

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// CommentTree returns the post's comments as a bounded thread: top-level
// comments oldest-first, each with up to maxSiblings replies down to
// maxTreeDepth levels. RepliesCount always reflects the full stored count.
func (s *CommentService) CommentTree(ctx context.Context, postID, currentUserID uint) ([]*models.CommentNode, error) {
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublic && post.AuthorID != currentUserID {
		return nil, models.NewNotFoundError("Post", postID)
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return buildCommentTree(comments), nil
}

func buildCommentTree(comments []models.Comment) []*models.CommentNode {
	children := make(map[uint][]models.Comment)
	var roots []models.Comment
	byID := make(map[uint]struct{}, len(comments))
	for _, c := range comments {
		byID[c.ID] = struct{}{}
	}
	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if _, ok := byID[*c.ParentID]; !ok {
			// Parent was deleted; promote the orphan to the top level
			// so the branch stays reachable.
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}
	sort.SliceStable(roots, func(i, j int) bool {
		if roots[i].CreatedAt.Equal(roots[j].CreatedAt) {
			return roots[i].ID < roots[j].ID
		}
		return roots[i].CreatedAt.Before(roots[j].CreatedAt)
	})

	nodes := make([]*models.CommentNode, 0, len(roots))
	for _, root := range roots {
		nodes = append(nodes, buildNode(root, children, 1))
	}
	return nodes
}

func buildNode(c models.Comment, children map[uint][]models.Comment, depth int) *models.CommentNode {
	node := &models.CommentNode{
		Comment:      c,
		RepliesCount: len(children[c.ID]),
		Replies:      []*models.CommentNode{},
	}
	if depth >= maxTreeDepth {
		return node
	}
	replies := children[c.ID]
	if len(replies) > maxSiblings {
		replies = replies[:maxSiblings]
	}
	for _, reply := range replies {
		node.Replies = append(node.Replies, buildNode(reply, children, depth+1))
	}
	return node
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != in.AuthorID {
		return nil, models.NewUnauthorizedError("You can only edit your own comments")
	}
	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. The comment author and the post author
// may both delete it.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		post, err := s.postRepo.GetByID(ctx, comment.PostID, userID)
		if err != nil {
			return err
		}
		if post.AuthorID != userID {
			return models.NewUnauthorizedError("You can only delete your own comments")
		}
	}
	return s.commentRepo.Delete(ctx, comment)
}
