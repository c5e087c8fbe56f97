// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"time"

	"sankalpa/internal/feed"
	"sankalpa/internal/models"
	"sankalpa/internal/streak"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var categories = []string{
	string(feed.CategoryMotivation),
	string(feed.CategorySuccess),
	string(feed.CategorySupport),
	string(feed.CategoryGeneral),
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	faker  *gofakeit.Faker
	engine *streak.Engine
	now    time.Time
	seq    int
	start  *time.Time
}

// NewFactory creates a Factory bound to db. A zero seed picks a random one.
func NewFactory(db *gorm.DB, engine *streak.Engine, seed int64, now time.Time) *Factory {
	return &Factory{db: db, faker: gofakeit.New(seed), engine: engine, now: now}
}

// SetStreakStart makes every user built afterwards start their streak at
// value, an RFC3339 timestamp or a plain date.
func (f *Factory) SetStreakStart(value string) error {
	start := streak.ParseStartDate(value)
	if start == nil {
		return fmt.Errorf("invalid streak start %q", value)
	}
	if start.After(f.now) {
		return fmt.Errorf("streak start %q is in the future", value)
	}
	f.start = start
	return nil
}

// BuildUser returns an unsaved user with a random streak whose stored badge
// matches the derived one.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	var start time.Time
	var days int
	if f.start != nil {
		start = *f.start
		days = streak.DaysElapsed(&start, f.now)
	} else {
		days = f.faker.IntRange(0, 120)
		start = f.now.Add(-time.Duration(days)*24*time.Hour - time.Duration(f.faker.IntRange(0, 23))*time.Hour)
	}
	xp := f.faker.IntRange(0, 900)
	f.seq++

	user := &models.User{
		Username:        fmt.Sprintf("%s_%d_%d", f.faker.Username(), f.seq, f.faker.Number(100, 999)),
		Avatar:          fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		StreakStartDate: &start,
		CurrentBadge:    f.engine.CurrentBadge(days).ID,
		CheckInStreak:   f.faker.IntRange(0, days),
		XP:              xp,
		Level:           xp/100 + 1,
		Coins:           f.faker.IntRange(0, 500),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// BuildPost returns an unsaved post by author created within maxDays.
func (f *Factory) BuildPost(author *models.User, maxDays int, overrides ...func(*models.Post)) *models.Post {
	if maxDays <= 0 {
		maxDays = 30
	}
	age := time.Duration(f.faker.IntRange(0, maxDays*24*60)) * time.Minute
	post := &models.Post{
		UserID:    author.ID,
		Content:   f.faker.Paragraph(1, 3, 12, " "),
		Category:  feed.Category(f.faker.RandomString(categories)),
		CreatedAt: f.now.Add(-age),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in a single statement.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Omit("User").Create(&posts).Error
}

// MakeHero grants the community hero role until now+d.
func (f *Factory) MakeHero(user *models.User, d time.Duration) error {
	expires := f.now.Add(d)
	user.IsCommunityHero = true
	user.HeroStatusExpiresAt = &expires
	return f.db.Model(user).Updates(map[string]any{
		"is_community_hero":      true,
		"hero_status_expires_at": expires,
	}).Error
}
