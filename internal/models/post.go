package models

import (
	"time"

	"sankalpa/internal/feed"

	"gorm.io/gorm"
)

// Post is a community post.
type Post struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	UserID   uint          `gorm:"not null;index" json:"user_id"`
	User     User          `gorm:"foreignKey:UserID" json:"user"`
	Content  string        `gorm:"type:text;not null" json:"content"`
	Category feed.Category `gorm:"type:varchar(20);not null;default:'general'" json:"category"`
	// IsPinned is set only by a community hero; at most one row is true.
	IsPinned bool `gorm:"default:false;index" json:"is_pinned"`

	Likes      []Like      `gorm:"foreignKey:PostID" json:"-"`
	HeroAwards []HeroAward `gorm:"foreignKey:PostID" json:"-"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// FeedView projects the row onto the ranking input.
func (p *Post) FeedView() feed.Post {
	likers := make([]uint, 0, len(p.Likes))
	for _, l := range p.Likes {
		likers = append(likers, l.UserID)
	}
	grantors := make([]uint, 0, len(p.HeroAwards))
	for _, a := range p.HeroAwards {
		grantors = append(grantors, a.GrantorID)
	}
	return feed.Post{
		ID:           p.ID,
		AuthorID:     p.UserID,
		AuthorName:   p.User.Username,
		Content:      p.Content,
		Category:     p.Category,
		CreatedAt:    p.CreatedAt,
		LikerIDs:     likers,
		CommentCount: p.CommentsCount,
		IsPinned:     p.IsPinned,
		HeroAwardIDs: grantors,
	}
}

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Like) TableName() string {
	return "likes"
}

// HeroAward is a community hero's award on a post, at most one per grantor.
type HeroAward struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GrantorID uint      `gorm:"not null;uniqueIndex:idx_award_grantor_post" json:"grantor_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_award_grantor_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (HeroAward) TableName() string {
	return "hero_awards"
}

// Comment represents a comment on a post.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}
