package seed

import (
	"testing"
	"time"

	"sankalpa/internal/database"
	"sankalpa/internal/models"
	"sankalpa/internal/streak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

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

func newFactory(db *gorm.DB) *Factory {
	return NewFactory(db, streak.MustNewEngine(streak.DefaultTable()), 42, testNow)
}

func TestBuildUser_BadgeMatchesStreak(t *testing.T) {
	f := newFactory(nil)
	engine := streak.MustNewEngine(streak.DefaultTable())

	for i := 0; i < 50; i++ {
		u := f.BuildUser()
		require.NotNil(t, u.StreakStartDate)
		_, changed := engine.Reconcile(u.CurrentBadge, u.StreakStartDate, testNow)
		assert.False(t, changed, "user %s stored %s", u.Username, u.CurrentBadge)
		assert.Equal(t, u.XP/100+1, u.Level)
		assert.LessOrEqual(t, u.CheckInStreak, streak.DaysElapsed(u.StreakStartDate, testNow))
	}

	u := f.BuildUser(func(u *models.User) { u.Username = "fixed" })
	assert.Equal(t, "fixed", u.Username)
}

func TestFactory_SetStreakStart(t *testing.T) {
	f := newFactory(nil)
	require.NoError(t, f.SetStreakStart("2026-04-01"))

	u := f.BuildUser()
	require.NotNil(t, u.StreakStartDate)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *u.StreakStartDate)
	assert.Equal(t, "sigma", u.CurrentBadge)

	require.NoError(t, f.SetStreakStart("2026-04-28T08:00:00Z"))
	assert.Equal(t, "novice", f.BuildUser().CurrentBadge)

	assert.Error(t, f.SetStreakStart("last tuesday"))
	assert.Error(t, f.SetStreakStart("2026-06-01"))
}

func TestBuildPost_WithinWindow(t *testing.T) {
	f := newFactory(nil)
	author := &models.User{ID: 3}
	for i := 0; i < 50; i++ {
		p := f.BuildPost(author, 7)
		assert.Equal(t, uint(3), p.UserID)
		assert.True(t, p.Category.Valid())
		assert.NotEmpty(t, p.Content)
		assert.False(t, p.CreatedAt.After(testNow))
		assert.False(t, p.CreatedAt.Before(testNow.Add(-7*24*time.Hour)))
	}
}

func TestSeeder_Run(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db, newFactory(db))

	res, err := s.Run(Options{Users: 6, PostsPerUser: 3, MaxDays: 10})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Users)
	assert.Equal(t, 18, res.Posts)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(6), count)
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(18), count)
	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	assert.Equal(t, int64(res.Likes), count)
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(res.Follows), count)

	var selfLikes int64
	require.NoError(t, db.Table("likes").
		Joins("JOIN posts ON posts.id = likes.post_id").
		Where("posts.user_id = likes.user_id").
		Count(&selfLikes).Error)
	assert.Zero(t, selfLikes)

	var heroes []models.User
	require.NoError(t, db.Where("is_community_hero = ?", true).Find(&heroes).Error)
	require.Len(t, heroes, 1)
	assert.True(t, heroes[0].IsHero(testNow))
}

func TestSeeder_CleanRun(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db, newFactory(db))

	_, err := s.Run(Options{Users: 3, PostsPerUser: 2})
	require.NoError(t, err)
	_, err = s.Run(Options{Users: 4, PostsPerUser: 1, Clean: true})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
	require.NoError(t, db.Unscoped().Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestSeeder_RejectsTinyGraph(t *testing.T) {
	db := setupTestDB(t)
	_, err := NewSeeder(db, newFactory(db)).Run(Options{Users: 1})
	assert.Error(t, err)
}
