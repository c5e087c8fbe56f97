package repository

import (
	"context"
	"time"

	"sankalpa/internal/cache"
	"sankalpa/internal/database"
	"sankalpa/internal/feed"
	"sankalpa/internal/models"
	"sankalpa/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pinLockKey serializes pin transactions on PostgreSQL.
const pinLockKey = 0x50494e // "PIN"

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*models.Post, error)
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
	AddHeroAward(ctx context.Context, grantorID, postID uint) (bool, error)
	Pin(ctx context.Context, postID uint) (feed.PinPlan, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	cache.InvalidateFeed(ctx)
	r.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "user_id": post.UserID})
	return nil
}

// withDetails selects the comment count alongside every post column and
// preloads the author, likes and hero awards.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count").
		Preload("User").
		Preload("Likes").
		Preload("HeroAwards")
}

// GetByID reads from the primary so engagement written in the same request
// is visible.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withDetails(database.Write(ctx, r.db)).First(&post, id).Error; err != nil {
		return nil, notFound(err, "Post", id)
	}
	return &post, nil
}

// ListRecent returns posts created at or after since, newest first.
func (r *postRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]*models.Post, error) {
	defer observability.TrackQuery("list_recent", "posts")()

	var posts []*models.Post
	err := withDetails(reader(ctx, r.db)).
		Where("posts.created_at >= ?", since).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		r.log.LogError(ctx, err, "list_recent")
		return nil, err
	}
	return posts, nil
}

// Like inserts the like unless it exists. The unique (user_id, post_id)
// index makes concurrent likes by the same user collapse into one row.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	like := models.Like{UserID: userID, PostID: postID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&like)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "like")
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		cache.InvalidateFeed(ctx)
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "unlike")
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		cache.InvalidateFeed(ctx)
		r.log.LogDelete(ctx, map[string]any{"post_id": postID, "user_id": userID, "kind": "like"})
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// AddHeroAward stores one award per grantor and post. It reports false when
// the grantor already awarded the post.
func (r *postRepository) AddHeroAward(ctx context.Context, grantorID, postID uint) (bool, error) {
	award := models.HeroAward{GrantorID: grantorID, PostID: postID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "grantor_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&award)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "hero_award")
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		cache.InvalidateFeed(ctx)
		r.log.LogCreate(ctx, map[string]any{"post_id": postID, "grantor_id": grantorID, "kind": "hero_award"})
	}
	return res.RowsAffected > 0, nil
}

// Pin makes postID the only pinned post. Reading the pinned set and applying
// the plan happen in one transaction.
func (r *postRepository) Pin(ctx context.Context, postID uint) (_ feed.PinPlan, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Pin", "posts")
	defer func() { observability.EndSpan(span, err) }()

	var plan feed.PinPlan
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", pinLockKey).Error; err != nil {
				return err
			}
		}

		var rows []models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "is_pinned").
			Where("is_pinned = ? OR id = ?", true, postID).
			Find(&rows).Error; err != nil {
			return err
		}

		views := make([]feed.Post, 0, len(rows))
		found := false
		for _, p := range rows {
			if p.ID == postID {
				found = true
			}
			views = append(views, feed.Post{ID: p.ID, IsPinned: p.IsPinned})
		}
		if !found {
			return gorm.ErrRecordNotFound
		}

		plan = feed.PlanPin(views, postID)
		if len(plan.Unpin) > 0 {
			if err := tx.Model(&models.Post{}).Where("id IN ?", plan.Unpin).Update("is_pinned", false).Error; err != nil {
				return err
			}
		}
		if plan.Pin != 0 {
			if err := tx.Model(&models.Post{}).Where("id = ?", plan.Pin).Update("is_pinned", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "pin")
		return feed.PinPlan{}, notFound(err, "Post", postID)
	}
	if !plan.Empty() {
		cache.InvalidateFeed(ctx)
		r.log.LogUpdate(ctx, map[string]any{"post_id": postID, "unpinned": plan.Unpin})
	}
	return plan, nil
}
