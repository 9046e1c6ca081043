package repository

import (
	"context"
	"testing"
	"time"

	"gitforum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostCreateMaintainsCounters(t *testing.T) {
	db := setupRepoTestDB(t)
	user := createTestUser(t, db, "ada")
	tagRepo := NewTagRepository(db)
	repo := NewPostRepository(db, newTestEngine(db))
	ctx := context.Background()

	tags, err := tagRepo.GetOrCreate(ctx, []string{"Go", "algorithms"})
	require.NoError(t, err)
	require.Len(t, tags, 2)

	post := &models.Post{
		AuthorID: user.ID,
		Title:    "binary search",
		Code:     "func bs() {}",
		Language: "go",
		IsPublic: true,
		Tags:     tags,
	}
	require.NoError(t, repo.Create(ctx, post))

	assert.Equal(t, 1, userCounter(t, db, user.ID, "posts_count"))
	for _, tag := range tags {
		var usage int
		require.NoError(t, db.Model(&models.Tag{}).Where("id = ?", tag.ID).Pluck("usage_count", &usage).Error)
		assert.Equal(t, 1, usage, "tag %s", tag.Name)
	}
}

func TestPostDeleteRollsCountersBack(t *testing.T) {
	db := setupRepoTestDB(t)
	user := createTestUser(t, db, "ada")
	repo := NewPostRepository(db, newTestEngine(db))
	ctx := context.Background()

	post := &models.Post{AuthorID: user.ID, Title: "t", Code: "c", Language: "go", IsPublic: true}
	require.NoError(t, repo.Create(ctx, post))
	require.Equal(t, 1, userCounter(t, db, user.ID, "posts_count"))

	require.NoError(t, repo.Delete(ctx, post))
	assert.Equal(t, 0, userCounter(t, db, user.ID, "posts_count"))

	_, err := repo.GetByID(ctx, post.ID, 0)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPostGetByIDPersonalization(t *testing.T) {
	db := setupRepoTestDB(t)
	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")
	post := createTestPost(t, db, author.ID)
	repo := NewPostRepository(db, newTestEngine(db))
	engagement := NewEngagementRepository(db, newTestEngine(db))
	ctx := context.Background()

	_, err := engagement.RecordLike(ctx, reader.ID, post.ID)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, post.ID, reader.ID)
	require.NoError(t, err)
	assert.True(t, got.Liked)
	assert.False(t, got.Bookmarked)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, author.ID, got.Author.ID)

	anon, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.False(t, anon.Liked)
}

func TestPostVisibility(t *testing.T) {
	db := setupRepoTestDB(t)
	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")
	repo := NewPostRepository(db, newTestEngine(db))
	ctx := context.Background()

	private := &models.Post{AuthorID: author.ID, Title: "secret", Code: "c", Language: "go", IsPublic: false}
	require.NoError(t, repo.Create(ctx, private))
	public := &models.Post{AuthorID: author.ID, Title: "open", Code: "c", Language: "go", IsPublic: true}
	require.NoError(t, repo.Create(ctx, public))

	anon, err := repo.List(ctx, PostListOptions{Limit: 10}, 0)
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, "open", anon[0].Title)

	stranger, err := repo.List(ctx, PostListOptions{Limit: 10}, other.ID)
	require.NoError(t, err)
	require.Len(t, stranger, 1)

	own, err := repo.List(ctx, PostListOptions{Limit: 10}, author.ID)
	require.NoError(t, err)
	assert.Len(t, own, 2, "authors see their own private posts")

	strangerProfile, err := repo.GetByUserID(ctx, author.ID, 10, 0, other.ID)
	require.NoError(t, err)
	assert.Len(t, strangerProfile, 1)
}

func TestPostListFilters(t *testing.T) {
	db := setupRepoTestDB(t)
	user := createTestUser(t, db, "ada")
	tagRepo := NewTagRepository(db)
	repo := NewPostRepository(db, newTestEngine(db))
	ctx := context.Background()

	goTags, err := tagRepo.GetOrCreate(ctx, []string{"web"})
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, &models.Post{
		AuthorID: user.ID, Title: "go post", Code: "c", Language: "go", IsPublic: true, Tags: goTags,
	}))
	require.NoError(t, repo.Create(ctx, &models.Post{
		AuthorID: user.ID, Title: "py post", Code: "c", Language: "python", IsPublic: true,
	}))

	byLang, err := repo.List(ctx, PostListOptions{Limit: 10, Language: "python"}, 0)
	require.NoError(t, err)
	require.Len(t, byLang, 1)
	assert.Equal(t, "py post", byLang[0].Title)

	byTag, err := repo.List(ctx, PostListOptions{Limit: 10, Tag: "Web"}, 0)
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "go post", byTag[0].Title)
}

func TestPostSearch(t *testing.T) {
	db := setupRepoTestDB(t)
	user := createTestUser(t, db, "ada")
	repo := NewPostRepository(db, newTestEngine(db))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Post{
		AuthorID: user.ID, Title: "Dijkstra shortest path", Code: "c", Language: "go", IsPublic: true,
	}))
	require.NoError(t, repo.Create(ctx, &models.Post{
		AuthorID: user.ID, Title: "hello", Code: "fmt.Println(\"dijkstra\")", Language: "go", IsPublic: true,
	}))

	found, err := repo.Search(ctx, "DIJKSTRA", 10, 0, 0)
	require.NoError(t, err)
	assert.Len(t, found, 2, "search matches title and code, case-insensitively")
}

func TestPostTrendingWindow(t *testing.T) {
	db := setupRepoTestDB(t)
	user := createTestUser(t, db, "ada")
	repo := NewPostRepository(db, newTestEngine(db))
	ctx := context.Background()

	old := &models.Post{AuthorID: user.ID, Title: "old", Code: "c", Language: "go", IsPublic: true}
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, db.Model(old).UpdateColumn("created_at", time.Now().Add(-10*24*time.Hour)).Error)

	fresh := &models.Post{AuthorID: user.ID, Title: "fresh", Code: "c", Language: "go", IsPublic: true}
	require.NoError(t, db.Create(fresh).Error)

	trending, err := repo.Trending(ctx, time.Now().Add(-7*24*time.Hour), 10, 0)
	require.NoError(t, err)
	require.Len(t, trending, 1)
	assert.Equal(t, "fresh", trending[0].Title)
}

func TestReplaceTagsAdjustsUsage(t *testing.T) {
	db := setupRepoTestDB(t)
	user := createTestUser(t, db, "ada")
	tagRepo := NewTagRepository(db)
	repo := NewPostRepository(db, newTestEngine(db))
	ctx := context.Background()

	initial, err := tagRepo.GetOrCreate(ctx, []string{"go", "cli"})
	require.NoError(t, err)
	post := &models.Post{AuthorID: user.ID, Title: "t", Code: "c", Language: "go", IsPublic: true, Tags: initial}
	require.NoError(t, repo.Create(ctx, post))

	next, err := tagRepo.GetOrCreate(ctx, []string{"go", "web"})
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceTags(ctx, post, next))

	usage := func(name string) int {
		var n int
		require.NoError(t, db.Model(&models.Tag{}).Where("name = ?", name).Pluck("usage_count", &n).Error)
		return n
	}
	assert.Equal(t, 1, usage("go"), "kept tag unchanged")
	assert.Equal(t, 0, usage("cli"), "dropped tag decremented")
	assert.Equal(t, 1, usage("web"), "added tag incremented")
}

func TestBookmarkedListing(t *testing.T) {
	db := setupRepoTestDB(t)
	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")
	post := createTestPost(t, db, author.ID)
	repo := NewPostRepository(db, newTestEngine(db))
	engagement := NewEngagementRepository(db, newTestEngine(db))
	ctx := context.Background()

	_, err := engagement.RecordBookmark(ctx, reader.ID, post.ID)
	require.NoError(t, err)

	saved, err := repo.Bookmarked(ctx, reader.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, post.ID, saved[0].ID)
	assert.True(t, saved[0].Bookmarked)
}
