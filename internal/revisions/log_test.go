package revisions

import (
	"context"
	"sync"
	"testing"

	"gitforum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRevisionTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// A single connection keeps every goroutine on the same in-memory
	// database and makes sqlite behave under concurrent writers.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostRevision{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createRevisionFixtures(t *testing.T, db *gorm.DB) (*models.User, *models.Post) {
	t.Helper()
	user := &models.User{Username: "ada", Email: "ada@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	post := &models.Post{AuthorID: user.ID, Title: "v1", Code: "print(1)", Language: "python"}
	require.NoError(t, db.Create(post).Error)
	return user, post
}

func sameContent(post *models.Post) map[string]interface{} {
	return map[string]interface{}{
		"title":       post.Title,
		"code":        post.Code,
		"description": post.Description,
	}
}

func TestAppendNumbersFromOne(t *testing.T) {
	db := setupRevisionTestDB(t)
	user, post := createRevisionFixtures(t, db)
	log := NewLog(db)

	rev, err := log.Append(context.Background(), post, user.ID, "initial import", sameContent(post))
	require.NoError(t, err)
	assert.Equal(t, 1, rev.RevisionNumber)
	assert.Equal(t, "v1", rev.Title)
	assert.Equal(t, "print(1)", rev.Code)
	assert.Equal(t, "initial import", rev.CommitMessage)

	rev2, err := log.Append(context.Background(), post, user.ID, "", sameContent(post))
	require.NoError(t, err)
	assert.Equal(t, 2, rev2.RevisionNumber)
}

func TestAppendSnapshotsPreUpdateContent(t *testing.T) {
	db := setupRevisionTestDB(t)
	user, post := createRevisionFixtures(t, db)
	log := NewLog(db)

	_, err := log.Append(context.Background(), post, user.ID, "before rename",
		map[string]interface{}{"title": "v2", "code": "print(2)"})
	require.NoError(t, err)

	rev, err := log.Get(context.Background(), post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "v1", rev.Title, "revision holds the content the edit replaced")
	assert.Equal(t, "print(1)", rev.Code)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, "v2", stored.Title, "posts row carries the new content")
	assert.Equal(t, "print(2)", stored.Code)
}

func TestAppendRollsBackSnapshotWhenUpdateFails(t *testing.T) {
	db := setupRevisionTestDB(t)
	user, post := createRevisionFixtures(t, db)
	log := NewLog(db)

	_, err := log.Append(context.Background(), post, user.ID, "bad edit",
		map[string]interface{}{"no_such_column": "x"})
	require.Error(t, err)

	// The snapshot must not survive the failed update.
	var count int64
	require.NoError(t, db.Model(&models.PostRevision{}).
		Where("post_id = ?", post.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, "v1", stored.Title)

	// The history is still numbered from one afterwards.
	rev, err := log.Append(context.Background(), post, user.ID, "", sameContent(post))
	require.NoError(t, err)
	assert.Equal(t, 1, rev.RevisionNumber)
}

func TestConcurrentAppendsAreGapFree(t *testing.T) {
	db := setupRevisionTestDB(t)
	user, post := createRevisionFixtures(t, db)
	log := NewLog(db)

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := log.Append(context.Background(), post, user.ID, "", sameContent(post))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	revs, err := log.List(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, revs, writers)

	// Newest-first, contiguous from writers down to 1.
	for i, rev := range revs {
		assert.Equal(t, writers-i, rev.RevisionNumber)
	}
}

func TestNumberingIsPerPost(t *testing.T) {
	db := setupRevisionTestDB(t)
	user, post := createRevisionFixtures(t, db)
	other := &models.Post{AuthorID: user.ID, Title: "other", Code: "x", Language: "go"}
	require.NoError(t, db.Create(other).Error)
	log := NewLog(db)

	_, err := log.Append(context.Background(), post, user.ID, "", sameContent(post))
	require.NoError(t, err)

	rev, err := log.Append(context.Background(), other, user.ID, "", sameContent(other))
	require.NoError(t, err)
	assert.Equal(t, 1, rev.RevisionNumber, "each post numbers independently")
}

func TestGetMissingRevision(t *testing.T) {
	db := setupRevisionTestDB(t)
	_, post := createRevisionFixtures(t, db)
	log := NewLog(db)

	_, err := log.Get(context.Background(), post.ID, 42)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestAppendSurvivesExistingHistory(t *testing.T) {
	db := setupRevisionTestDB(t)
	user, post := createRevisionFixtures(t, db)
	log := NewLog(db)

	// History written by another process.
	require.NoError(t, db.Create(&models.PostRevision{
		PostID: post.ID, AuthorID: user.ID, RevisionNumber: 5,
		Title: "old", Code: "y",
	}).Error)

	rev, err := log.Append(context.Background(), post, user.ID, "", sameContent(post))
	require.NoError(t, err)
	assert.Equal(t, 6, rev.RevisionNumber)
}
