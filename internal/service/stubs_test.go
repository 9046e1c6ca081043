package service

import (
	"context"
	"testing"
	"time"

	"gitforum/internal/models"
	"gitforum/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Function-field stubs let each test override just the calls it cares
// about. Unset fields fail loudly instead of silently returning zero
// values.

type postRepoStub struct {
	createFn      func(ctx context.Context, post *models.Post) error
	getByIDFn     func(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	getByUserIDFn func(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	listFn        func(ctx context.Context, opts repository.PostListOptions, currentUserID uint) ([]*models.Post, error)
	searchFn      func(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error)
	trendingFn    func(ctx context.Context, since time.Time, limit int, currentUserID uint) ([]*models.Post, error)
	bookmarkedFn  func(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	replaceTagsFn func(ctx context.Context, post *models.Post, tags []models.Tag) error
	deleteFn      func(ctx context.Context, post *models.Post) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}

func (s *postRepoStub) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}

func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}

func (s *postRepoStub) List(ctx context.Context, opts repository.PostListOptions, currentUserID uint) ([]*models.Post, error) {
	return s.listFn(ctx, opts, currentUserID)
}

func (s *postRepoStub) Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.searchFn(ctx, query, limit, offset, currentUserID)
}

func (s *postRepoStub) Trending(ctx context.Context, since time.Time, limit int, currentUserID uint) ([]*models.Post, error) {
	return s.trendingFn(ctx, since, limit, currentUserID)
}

func (s *postRepoStub) Bookmarked(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.bookmarkedFn(ctx, userID, limit, offset)
}

func (s *postRepoStub) ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	return s.replaceTagsFn(ctx, post, tags)
}

func (s *postRepoStub) Delete(ctx context.Context, post *models.Post) error {
	return s.deleteFn(ctx, post)
}

type tagRepoStub struct {
	getOrCreateFn func(ctx context.Context, names []string) ([]models.Tag, error)
	listFn        func(ctx context.Context, limit int) ([]models.Tag, error)
	getByNameFn   func(ctx context.Context, name string) (*models.Tag, error)
}

func (s *tagRepoStub) GetOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	return s.getOrCreateFn(ctx, names)
}

func (s *tagRepoStub) List(ctx context.Context, limit int) ([]models.Tag, error) {
	return s.listFn(ctx, limit)
}

func (s *tagRepoStub) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	return s.getByNameFn(ctx, name)
}

type commentRepoStub struct {
	createFn     func(ctx context.Context, comment *models.Comment) error
	getByIDFn    func(ctx context.Context, id uint) (*models.Comment, error)
	listByPostFn func(ctx context.Context, postID uint) ([]models.Comment, error)
	updateFn     func(ctx context.Context, comment *models.Comment) error
	deleteFn     func(ctx context.Context, comment *models.Comment) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}

func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}

func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}

func (s *commentRepoStub) Delete(ctx context.Context, comment *models.Comment) error {
	return s.deleteFn(ctx, comment)
}

type engagementRepoStub struct {
	recordLikeFn     func(ctx context.Context, userID, postID uint) (bool, error)
	removeLikeFn     func(ctx context.Context, userID, postID uint) (bool, error)
	recordBookmarkFn func(ctx context.Context, userID, postID uint) (bool, error)
	removeBookmarkFn func(ctx context.Context, userID, postID uint) (bool, error)
	recordViewFn     func(ctx context.Context, postID uint, userID *uint, sessionKey, ip string) (bool, error)
}

func (s *engagementRepoStub) RecordLike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.recordLikeFn(ctx, userID, postID)
}

func (s *engagementRepoStub) RemoveLike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.removeLikeFn(ctx, userID, postID)
}

func (s *engagementRepoStub) RecordBookmark(ctx context.Context, userID, postID uint) (bool, error) {
	return s.recordBookmarkFn(ctx, userID, postID)
}

func (s *engagementRepoStub) RemoveBookmark(ctx context.Context, userID, postID uint) (bool, error) {
	return s.removeBookmarkFn(ctx, userID, postID)
}

func (s *engagementRepoStub) RecordView(ctx context.Context, postID uint, userID *uint, sessionKey, ip string) (bool, error) {
	return s.recordViewFn(ctx, postID, userID, sessionKey, ip)
}

type followRepoStub struct {
	followFn      func(ctx context.Context, followerID, followingID uint) (bool, error)
	unfollowFn    func(ctx context.Context, followerID, followingID uint) (bool, error)
	isFollowingFn func(ctx context.Context, followerID, followingID uint) (bool, error)
	followersFn   func(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	followingFn   func(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.followFn(ctx, followerID, followingID)
}

func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.unfollowFn(ctx, followerID, followingID)
}

func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}

func (s *followRepoStub) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followersFn(ctx, userID, limit, offset)
}

func (s *followRepoStub) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followingFn(ctx, userID, limit, offset)
}

type userRepoStub struct {
	getByIDFn          func(ctx context.Context, id uint, currentUserID uint) (*models.User, error)
	getByIDWithPostsFn func(ctx context.Context, id uint, limit int) (*models.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn    func(ctx context.Context, username string, currentUserID uint) (*models.User, error)
	createFn           func(ctx context.Context, user *models.User) error
	updateFn           func(ctx context.Context, user *models.User) error
	deleteFn           func(ctx context.Context, id uint) error
	listFn             func(ctx context.Context, limit, offset int, currentUserID uint) ([]models.User, error)
	searchFn           func(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]models.User, error)
	topContributorsFn  func(ctx context.Context, limit int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.User, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}

func (s *userRepoStub) GetByIDWithPosts(ctx context.Context, id uint, limit int) (*models.User, error) {
	return s.getByIDWithPostsFn(ctx, id, limit)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string, currentUserID uint) (*models.User, error) {
	return s.getByUsernameFn(ctx, username, currentUserID)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func (s *userRepoStub) SetLastSeen(ctx context.Context, id uint, at time.Time) error {
	return nil
}

func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func (s *userRepoStub) List(ctx context.Context, limit, offset int, currentUserID uint) ([]models.User, error) {
	return s.listFn(ctx, limit, offset, currentUserID)
}

func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]models.User, error) {
	return s.searchFn(ctx, query, limit, offset, currentUserID)
}

func (s *userRepoStub) TopContributors(ctx context.Context, limit int) ([]models.User, error) {
	return s.topContributorsFn(ctx, limit)
}

type notificationRepoStub struct {
	listByRecipientFn func(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error)
	unreadCountFn     func(ctx context.Context, recipientID uint) (int64, error)
	markReadFn        func(ctx context.Context, recipientID, notificationID uint) (bool, error)
	markAllReadFn     func(ctx context.Context, recipientID uint) (int64, error)
}

func (s *notificationRepoStub) ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error) {
	return s.listByRecipientFn(ctx, recipientID, limit, offset)
}

func (s *notificationRepoStub) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.unreadCountFn(ctx, recipientID)
}

func (s *notificationRepoStub) MarkRead(ctx context.Context, recipientID, notificationID uint) (bool, error) {
	return s.markReadFn(ctx, recipientID, notificationID)
}

func (s *notificationRepoStub) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.markAllReadFn(ctx, recipientID)
}

// fanoutRecorder captures which fan-out events fired.
type fanoutRecorder struct {
	likes     []uint
	comments  []uint
	follows   [][2]uint
	published []uint
}

func (f *fanoutRecorder) PostLiked(ctx context.Context, actorID uint, post *models.Post) {
	f.likes = append(f.likes, post.ID)
}

func (f *fanoutRecorder) CommentCreated(ctx context.Context, comment *models.Comment, post *models.Post, parent *models.Comment) {
	f.comments = append(f.comments, comment.ID)
}

func (f *fanoutRecorder) UserFollowed(ctx context.Context, followerID, followingID uint) {
	f.follows = append(f.follows, [2]uint{followerID, followingID})
}

func (f *fanoutRecorder) PostPublished(ctx context.Context, post *models.Post) {
	f.published = append(f.published, post.ID)
}

type revisionLogStub struct {
	appendFn func(ctx context.Context, post *models.Post, editorID uint, commitMessage string, fields map[string]interface{}) (*models.PostRevision, error)
	listFn   func(ctx context.Context, postID uint) ([]models.PostRevision, error)
	getFn    func(ctx context.Context, postID uint, number int) (*models.PostRevision, error)
}

func (s *revisionLogStub) Append(ctx context.Context, post *models.Post, editorID uint, commitMessage string, fields map[string]interface{}) (*models.PostRevision, error) {
	return s.appendFn(ctx, post, editorID, commitMessage, fields)
}

func (s *revisionLogStub) List(ctx context.Context, postID uint) ([]models.PostRevision, error) {
	return s.listFn(ctx, postID)
}

func (s *revisionLogStub) Get(ctx context.Context, postID uint, number int) (*models.PostRevision, error) {
	return s.getFn(ctx, postID, number)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T", err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T", err)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}
