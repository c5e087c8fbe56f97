package feed

import (
	"sort"
	"time"
)

// Mode selects the feed ordering.
type Mode string

const (
	ModeRelevant  Mode = "relevant"
	ModeRecent    Mode = "recent"
	ModeFollowing Mode = "following"
)

// ParseMode maps a query value to a Mode. Empty selects relevant.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case "", ModeRelevant:
		return ModeRelevant, true
	case ModeRecent:
		return ModeRecent, true
	case ModeFollowing:
		return ModeFollowing, true
	}
	return ModeRelevant, false
}

// Scored pairs a post with the score computed for this render.
type Scored struct {
	Post
	Score    float64 `json:"relevance_score"`
	Followed bool    `json:"followed"`
}

// Rank orders posts for the viewer without touching the input slice. Ties keep
// their input order.
func Rank(posts []Post, mode Mode, follows FollowSet, now time.Time) []Scored {
	out := make([]Scored, len(posts))
	for i, p := range posts {
		out[i] = Scored{
			Post:     p,
			Score:    RelevanceScore(p, follows, now),
			Followed: follows.Contains(p.AuthorID),
		}
	}

	switch mode {
	case ModeRecent:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case ModeFollowing:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Followed != out[j].Followed {
				return out[i].Followed
			}
			return out[i].Score > out[j].Score
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Score > out[j].Score
		})
	}
	return out
}
