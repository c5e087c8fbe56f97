// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the profile document: streak, economy and community role.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Avatar   string `json:"avatar"`

	// StreakStartDate is reset to now on every relapse or restart. Elapsed
	// days are always derived from it, never stored.
	StreakStartDate *time.Time `json:"streak_start_date"`
	CurrentBadge    string     `gorm:"size:64;default:'clown'" json:"current_badge"`

	// CheckInStreak counts consecutive daily check-ins.
	CheckInStreak int        `gorm:"default:0" json:"check_in_streak"`
	LastCheckIn   *time.Time `json:"last_check_in"`
	XP            int        `gorm:"default:0" json:"xp"`
	Level         int        `gorm:"default:1" json:"level"`
	Coins         int        `gorm:"default:0" json:"coins"`
	StakeActive   bool       `gorm:"default:false" json:"stake_active"`

	IsCommunityHero     bool       `gorm:"default:false" json:"is_community_hero"`
	HeroStatusExpiresAt *time.Time `json:"hero_status_expires_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// IsHero reports whether the community hero role is active at now.
func (u *User) IsHero(now time.Time) bool {
	if u == nil || !u.IsCommunityHero || u.HeroStatusExpiresAt == nil {
		return false
	}
	return now.Before(*u.HeroStatusExpiresAt)
}

// Follow is a directed follow edge.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
