package repository

import (
	"context"
	"time"

	"sankalpa/internal/cache"
	"sankalpa/internal/models"
	"sankalpa/internal/observability"
	"sankalpa/internal/rewards"

	"gorm.io/gorm"
)

// ResetInput describes a streak reset.
type ResetInput struct {
	UserID  uint
	BadgeID string
	At      time.Time
	// LogRelapse stores a relapse entry with Reason in the same transaction.
	LogRelapse bool
	Reason     string
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	UpdateBadge(ctx context.Context, id uint, from, to string) (bool, error)
	ResetStreak(ctx context.Context, in ResetInput) error
	ApplyCheckIn(ctx context.Context, id uint, res rewards.CheckInResult, at time.Time) (bool, error)
	AddRewards(ctx context.Context, id uint, g rewards.Grant) error
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"user_id": user.ID})
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("get_by_id", "users")()

	var user models.User
	_, err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return reader(ctx, r.db).First(&user, id).Error
	})
	if err != nil {
		return nil, notFound(err, "User", id)
	}
	return &user, nil
}

// UpdateBadge stores to only while the row still holds from, so a concurrent
// reset is never overwritten by a stale reconciliation.
func (r *userRepository) UpdateBadge(ctx context.Context, id uint, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND current_badge = ?", id, from).
		Update("current_badge", to)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update_badge")
		return false, res.Error
	}
	cache.InvalidateUser(ctx, id)
	if res.RowsAffected > 0 {
		r.log.LogUpdate(ctx, map[string]any{"user_id": id, "from": from, "to": to})
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) ResetStreak(ctx context.Context, in ResetInput) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", in.UserID).
			Updates(map[string]any{
				"streak_start_date": in.At,
				"check_in_streak":   0,
				"current_badge":     in.BadgeID,
				"stake_active":      false,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if !in.LogRelapse {
			return nil
		}
		return tx.Create(&models.RelapseEntry{
			UserID:    in.UserID,
			Reason:    in.Reason,
			Date:      models.DayKey(in.At),
			CreatedAt: in.At,
		}).Error
	})
	cache.InvalidateUser(ctx, in.UserID)
	if err != nil {
		r.log.LogError(ctx, err, "reset_streak")
		return notFound(err, "User", in.UserID)
	}
	r.log.LogUpdate(ctx, map[string]any{"user_id": in.UserID, "reset": true})
	return nil
}

// ApplyCheckIn stores a check-in unless one already exists for the UTC day of
// at. It reports false when another request won the day.
func (r *userRepository) ApplyCheckIn(ctx context.Context, id uint, res rewards.CheckInResult, at time.Time) (bool, error) {
	at = at.UTC()
	dayStart := at.Truncate(24 * time.Hour)
	g := res.Grant

	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND (last_check_in IS NULL OR last_check_in < ?)", id, dayStart).
		Updates(map[string]any{
			"check_in_streak": res.NewStreak,
			"xp":              gorm.Expr("xp + ?", g.XP),
			"level":           gorm.Expr("(xp + ?) / ? + 1", g.XP, rewards.XPPerLevel),
			"coins":           gorm.Expr("coins + ?", g.Total()),
			"last_check_in":   at,
		})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "check_in")
		return false, result.Error
	}
	cache.InvalidateUser(ctx, id)
	return result.RowsAffected > 0, nil
}

// AddRewards increments XP and coins in place and recomputes the level.
func (r *userRepository) AddRewards(ctx context.Context, id uint, g rewards.Grant) error {
	updates := map[string]any{}
	if g.XP != 0 {
		updates["xp"] = gorm.Expr("xp + ?", g.XP)
		updates["level"] = gorm.Expr("(xp + ?) / ? + 1", g.XP, rewards.XPPerLevel)
	}
	if g.Total() != 0 {
		updates["coins"] = gorm.Expr("coins + ?", g.Total())
	}
	if len(updates) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "add_rewards")
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}
