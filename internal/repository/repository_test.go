package repository

import (
	"testing"
	"time"

	"sankalpa/internal/database"
	"sankalpa/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

const testHour = time.Hour

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupTestDB returns a migrated in-memory SQLite database. A single
// connection keeps every query on the same memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	start := testNow.Add(-10 * 24 * time.Hour)
	u := &models.User{Username: name, StreakStartDate: &start, CurrentBadge: "novice", Level: 1}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPost(t *testing.T, db *gorm.DB, author uint, created time.Time, pinned bool) *models.Post {
	t.Helper()
	p := &models.Post{UserID: author, Content: "keep going", Category: "support", CreatedAt: created, IsPinned: pinned}
	require.NoError(t, db.Omit("User").Create(p).Error)
	return p
}
