package counters

import (
	"context"
	"testing"

	"gitforum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCounterTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Bookmark{},
		&models.Follow{},
		&models.PostView{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createCounterFixtures(t *testing.T, db *gorm.DB) (*models.User, *models.Post) {
	t.Helper()
	user := &models.User{Username: "ada", Email: "ada@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	post := &models.Post{AuthorID: user.ID, Title: "quicksort", Code: "func qs() {}", Language: "go"}
	require.NoError(t, db.Create(post).Error)
	return user, post
}

func postLikes(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var n int
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", id).Pluck("likes_count", &n).Error)
	return n
}

func TestIncrementIsRelative(t *testing.T) {
	db := setupCounterTestDB(t)
	_, post := createCounterFixtures(t, db)
	engine := NewEngine(db)

	// A stale in-memory copy must not matter: only deltas hit the database.
	for i := 0; i < 7; i++ {
		require.NoError(t, engine.Increment(db, &models.Post{}, post.ID, "likes_count", 1))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, engine.Decrement(db, &models.Post{}, post.ID, "likes_count"))
	}

	assert.Equal(t, 4, postLikes(t, db, post.ID))
}

func TestIncrementZeroDeltaIsNoOp(t *testing.T) {
	db := setupCounterTestDB(t)
	_, post := createCounterFixtures(t, db)
	engine := NewEngine(db)

	require.NoError(t, engine.Increment(db, &models.Post{}, post.ID, "likes_count", 0))
	assert.Equal(t, 0, postLikes(t, db, post.ID))
}

func TestIncrementRejectsUnknownColumn(t *testing.T) {
	db := setupCounterTestDB(t)
	_, post := createCounterFixtures(t, db)
	engine := NewEngine(db)

	err := engine.Increment(db, &models.Post{}, post.ID, "password", 1)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestDecrementClampsAtZero(t *testing.T) {
	db := setupCounterTestDB(t)
	_, post := createCounterFixtures(t, db)
	engine := NewEngine(db)

	// Counter is already zero; the guarded update must not drive it negative.
	require.NoError(t, engine.Decrement(db, &models.Post{}, post.ID, "likes_count"))
	assert.Equal(t, 0, postLikes(t, db, post.ID))
}

func TestDecrementMissingRowIsNotFatal(t *testing.T) {
	db := setupCounterTestDB(t)
	engine := NewEngine(db)

	require.NoError(t, engine.Decrement(db, &models.Post{}, 9999, "likes_count"))
}

func TestIncrementRollsBackWithTransaction(t *testing.T) {
	db := setupCounterTestDB(t)
	_, post := createCounterFixtures(t, db)
	engine := NewEngine(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := engine.Increment(tx, &models.Post{}, post.ID, "likes_count", 1); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	assert.Equal(t, 0, postLikes(t, db, post.ID), "rolled-back increment must not persist")
}

func TestReconcileRepairsDrift(t *testing.T) {
	db := setupCounterTestDB(t)
	user, post := createCounterFixtures(t, db)
	engine := NewEngine(db)

	liker := &models.User{Username: "grace", Email: "grace@example.com", Password: "x"}
	require.NoError(t, db.Create(liker).Error)
	require.NoError(t, db.Create(&models.Like{UserID: liker.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: liker.ID, FollowingID: user.ID}).Error)

	// Counters were never maintained for these rows, so everything is stale.
	report, err := engine.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(reconcileSpecs), report.Checked,
		"Checked counts examined counter fields")

	byField := map[string]Correction{}
	for _, c := range report.Corrections {
		byField[c.Entity+"."+c.Field] = c
	}

	likes, ok := byField["post.likes_count"]
	require.True(t, ok, "expected a likes_count correction, got %+v", report.Corrections)
	assert.Equal(t, 0, likes.Stored)
	assert.Equal(t, 1, likes.Actual)

	followers, ok := byField["user.followers_count"]
	require.True(t, ok)
	assert.Equal(t, 1, followers.Actual)

	assert.Equal(t, 1, postLikes(t, db, post.ID))

	var fc int
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Pluck("followers_count", &fc).Error)
	assert.Equal(t, 1, fc)
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := setupCounterTestDB(t)
	_, post := createCounterFixtures(t, db)
	engine := NewEngine(db)

	require.NoError(t, db.Create(&models.Like{UserID: 1, PostID: post.ID}).Error)

	_, err := engine.Reconcile(context.Background())
	require.NoError(t, err)

	second, err := engine.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second.Corrections, "a clean database needs no corrections")
}

func TestReconcileSkipsSoftDeletedPosts(t *testing.T) {
	db := setupCounterTestDB(t)
	_, post := createCounterFixtures(t, db)
	engine := NewEngine(db)

	require.NoError(t, db.Create(&models.Like{UserID: 1, PostID: post.ID}).Error)
	require.NoError(t, db.Delete(&models.Post{}, post.ID).Error)

	report, err := engine.Reconcile(context.Background())
	require.NoError(t, err)

	for _, c := range report.Corrections {
		if c.Entity == "post" {
			assert.NotEqual(t, post.ID, c.ID, "soft-deleted posts are left alone")
		}
	}
}
