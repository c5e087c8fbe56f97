package seed

import (
	"fmt"
	"log/slog"
	"time"

	"sankalpa/internal/models"
	"sankalpa/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configures a seeding run.
type Options struct {
	Users        int
	PostsPerUser int
	MaxDays      int
	Clean        bool
}

// Result counts what a run created.
type Result struct {
	Users    int
	Posts    int
	Likes    int
	Comments int
	Follows  int
}

// Seeder populates the database with a small social graph.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

func NewSeeder(db *gorm.DB, factory *Factory) *Seeder {
	return &Seeder{db: db, factory: factory}
}

// ClearAll removes every row the seeder writes.
func (s *Seeder) ClearAll() error {
	for _, m := range []any{
		&models.HeroAward{}, &models.Like{}, &models.Comment{}, &models.Post{},
		&models.Follow{}, &models.DiaryEntry{}, &models.RelapseEntry{}, &models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}

// Run creates users, their posts and the engagement between them. The first
// user is made a community hero.
func (s *Seeder) Run(opts Options) (*Result, error) {
	if opts.Users < 2 {
		return nil, fmt.Errorf("need at least 2 users, got %d", opts.Users)
	}
	if opts.Clean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	f := s.factory

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	res.Users = len(users)
	if err := f.MakeHero(users[0], 30*24*time.Hour); err != nil {
		return nil, fmt.Errorf("make hero: %w", err)
	}

	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			posts = append(posts, f.BuildPost(u, opts.MaxDays))
		}
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	res.Posts = len(posts)

	var likes []models.Like
	var comments []models.Comment
	for _, p := range posts {
		for _, u := range users {
			if u.ID == p.UserID {
				continue
			}
			if f.faker.Number(0, 99) < 35 {
				likes = append(likes, models.Like{UserID: u.ID, PostID: p.ID})
			}
			if f.faker.Number(0, 99) < 10 {
				comments = append(comments, models.Comment{UserID: u.ID, PostID: p.ID, Content: f.faker.Sentence(8)})
			}
		}
	}

	var follows []models.Follow
	for _, a := range users {
		for _, b := range users {
			if a.ID != b.ID && f.faker.Number(0, 99) < 25 {
				follows = append(follows, models.Follow{FollowerID: a.ID, FolloweeID: b.ID})
			}
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(likes) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&likes, 500).Error; err != nil {
				return err
			}
		}
		if len(comments) > 0 {
			if err := tx.CreateInBatches(&comments, 500).Error; err != nil {
				return err
			}
		}
		if len(follows) > 0 {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&follows, 500).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create engagement: %w", err)
	}
	res.Likes, res.Comments, res.Follows = len(likes), len(comments), len(follows)

	observability.GlobalLogger.Info("seed complete",
		slog.Int("users", res.Users),
		slog.Int("posts", res.Posts),
		slog.Int("likes", res.Likes),
		slog.Int("comments", res.Comments),
		slog.Int("follows", res.Follows),
	)
	return res, nil
}
