// Package feed scores and orders community posts for a viewer.
package feed

import (
	"math"
	"time"
)

// Relevance weights. They are fixed product constants, not runtime settings.
const (
	LikeWeight       = 2.0
	CommentWeight    = 3.0
	FollowBonus      = 10.0
	PinnedBonus      = 100.0
	HeroAwardWeight  = 5.0
	RecencyWindowHrs = 24.0
)

// Category is the fixed set of post tags.
type Category string

const (
	CategoryMotivation Category = "motivation"
	CategorySuccess    Category = "success"
	CategorySupport    Category = "support"
	CategoryGeneral    Category = "general"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMotivation, CategorySuccess, CategorySupport, CategoryGeneral:
		return true
	}
	return false
}

// Post is the ranking view of a community post.
type Post struct {
	ID           uint      `json:"id"`
	AuthorID     uint      `json:"author_id"`
	AuthorName   string    `json:"author_name,omitempty"`
	Content      string    `json:"content"`
	Category     Category  `json:"category"`
	CreatedAt    time.Time `json:"created_at"`
	LikerIDs     []uint    `json:"liker_ids"`
	CommentCount int       `json:"comment_count"`
	IsPinned     bool      `json:"is_pinned"`
	HeroAwardIDs []uint    `json:"hero_award_ids"`
}

// LikeCount counts distinct likers.
func (p Post) LikeCount() int { return distinct(p.LikerIDs) }

// HeroAwardCount counts distinct award grantors.
func (p Post) HeroAwardCount() int { return distinct(p.HeroAwardIDs) }

func distinct(ids []uint) int {
	if len(ids) < 2 {
		return len(ids)
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// FollowSet is the set of authors the viewer follows.
type FollowSet map[uint]struct{}

// NewFollowSet builds a set from a list of author ids.
func NewFollowSet(ids ...uint) FollowSet {
	s := make(FollowSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains is safe on a nil set.
func (s FollowSet) Contains(id uint) bool {
	_, ok := s[id]
	return ok
}

// RecencyScore decays linearly from 24 to 0 over the first day. A timestamp
// in the future scores above 24 by the hours it lies ahead.
func RecencyScore(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	hours := float64(now.UnixMilli()-createdAt.UnixMilli()) / float64(time.Hour/time.Millisecond)
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0
	}
	return math.Max(0, RecencyWindowHrs-hours)
}

// RelevanceScore is the weighted engagement sum used by the relevant and
// following modes.
func RelevanceScore(p Post, follows FollowSet, now time.Time) float64 {
	score := LikeWeight*float64(p.LikeCount()) +
		CommentWeight*float64(max(p.CommentCount, 0)) +
		RecencyScore(p.CreatedAt, now) +
		HeroAwardWeight*float64(p.HeroAwardCount())
	if follows.Contains(p.AuthorID) {
		score += FollowBonus
	}
	if p.IsPinned {
		score += PinnedBonus
	}
	if math.IsNaN(score) {
		return 0
	}
	return score
}
