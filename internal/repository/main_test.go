package repository

import (
	"testing"

	"gitforum/internal/counters"
	"gitforum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupMockDB wires gorm over sqlmock for query-shape tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupRepoTestDB gives behavior tests a real in-memory database so
// transactions, conflict clauses and counter updates run for real.
func setupRepoTestDB(t *testing.T) *gorm.DB {
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
		&models.Notification{},
		&models.PostRevision{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEngine(db *gorm.DB) *counters.Engine {
	return counters.NewEngine(db)
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createTestPost(t *testing.T, db *gorm.DB, authorID uint) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: authorID, Title: "snippet", Code: "package main", Language: "go", IsPublic: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

func postCounter(t *testing.T, db *gorm.DB, id uint, column string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", id).Pluck(column, &n).Error)
	return n
}

func userCounter(t *testing.T, db *gorm.DB, id uint, column string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", id).Pluck(column, &n).Error)
	return n
}
