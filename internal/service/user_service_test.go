package service

import (
	"context"
	"strings"
	"testing"

	"gitforum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidUsername(t *testing.T) {
	t.Parallel()
	assert.True(t, ValidUsername("alice"))
	assert.True(t, ValidUsername("a-b_c123"))
	assert.False(t, ValidUsername("ab"))
	assert.False(t, ValidUsername("spaces not allowed"))
	assert.False(t, ValidUsername(strings.Repeat("a", 31)))
}

func TestUpdateProfileValidation(t *testing.T) {
	t.Parallel()
	svc := NewUserService(noopUserRepo())
	ctx := context.Background()

	longBio := strings.Repeat("a", 501)
	_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Bio: &longBio})
	assertValidationError(t, err)

	badSite := "ftp://example.com"
	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Website: &badSite})
	assertValidationError(t, err)
}

func TestUpdateProfileAppliesPartialEdit(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	repo.getByIDFn = func(ctx context.Context, id uint, currentUserID uint) (*models.User, error) {
		return &models.User{ID: id, Username: "alice", Bio: "old bio", Location: "Oslo"}, nil
	}
	var saved *models.User
	repo.updateFn = func(ctx context.Context, user *models.User) error {
		saved = user
		return nil
	}
	svc := NewUserService(repo)

	bio := "new bio"
	user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "new bio", user.Bio)
	// Untouched fields keep their stored values.
	assert.Equal(t, "Oslo", user.Location)
	require.NotNil(t, saved)
	assert.Equal(t, "new bio", saved.Bio)
}

func TestSearchUsersRequiresQuery(t *testing.T) {
	t.Parallel()
	svc := NewUserService(noopUserRepo())
	_, err := svc.SearchUsers(context.Background(), "", 10, 0, 0)
	assertValidationError(t, err)
}

func TestTopContributorsClampsLimit(t *testing.T) {
	t.Parallel()
	var gotLimit int
	repo := noopUserRepo()
	repo.topContributorsFn = func(ctx context.Context, limit int) ([]models.User, error) {
		gotLimit = limit
		return []models.User{{ID: 3, Username: "prolific"}}, nil
	}
	svc := NewUserService(repo)

	users, err := svc.TopContributors(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 10, gotLimit, "out-of-range limits fall back to the default")

	_, err = svc.TopContributors(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, 15, gotLimit)
}
