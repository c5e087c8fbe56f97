package streak

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const msPerDay = 24 * 60 * 60 * 1000

// Engine maps elapsed streak days onto a validated badge table.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	table Table
}

// Progress is the derived view rendered on the dashboard.
type Progress struct {
	Days          int     `json:"days"`
	Current       Badge   `json:"current_badge"`
	Next          *Badge  `json:"next_badge"`
	DaysRemaining int     `json:"days_remaining"`
	Fraction      float64 `json:"progress"`
}

// NewEngine returns an engine over a copy of table.
func NewEngine(table Table) (*Engine, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	t := make(Table, len(table))
	copy(t, table)
	return &Engine{table: t}, nil
}

// MustNewEngine is NewEngine for tables known to be valid at compile time.
func MustNewEngine(table Table) *Engine {
	e, err := NewEngine(table)
	if err != nil {
		panic(fmt.Sprintf("streak: %v", err))
	}
	return e
}

// Table returns a copy of the configured progression.
func (e *Engine) Table() Table {
	t := make(Table, len(e.table))
	copy(t, e.table)
	return t
}

// DaysElapsed returns the whole days between start and now. The absolute
// difference is used so a start slightly in the future still reads as zero.
func DaysElapsed(start *time.Time, now time.Time) int {
	if start == nil || start.IsZero() {
		return 0
	}
	diff := now.UnixMilli() - start.UnixMilli()
	if diff < 0 {
		diff = -diff
	}
	return int(diff / msPerDay)
}

// ParseStartDate accepts RFC3339 timestamps (with or without fractional
// seconds) and plain dates. Anything else yields nil.
func ParseStartDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func (e *Engine) currentIndex(days int) int {
	idx := 0
	for i, b := range e.table {
		if days < b.MinDays {
			break
		}
		idx = i
	}
	return idx
}

// CurrentBadge returns the highest badge whose threshold days meets.
func (e *Engine) CurrentBadge(days int) Badge {
	return e.table[e.currentIndex(days)]
}

// NextBadgeInfo returns the badge after the current one and the days left to
// reach it. At the top tier it returns nil and 0.
func (e *Engine) NextBadgeInfo(days int) (*Badge, int) {
	next := e.currentIndex(days) + 1
	if next >= len(e.table) {
		return nil, 0
	}
	b := e.table[next]
	remaining := b.MinDays - days
	if remaining < 0 {
		remaining = 0
	}
	return &b, remaining
}

// ProgressFraction is days/next.MinDays capped to [0, 1]. A nil next badge
// means the top tier is reached.
func ProgressFraction(days int, next *Badge) float64 {
	if next == nil {
		return 1
	}
	if next.MinDays <= 0 || days <= 0 {
		return 0
	}
	f := float64(days) / float64(next.MinDays)
	if math.IsNaN(f) {
		return 0
	}
	return math.Min(1, f)
}

// Progress computes the full dashboard view for a streak start.
func (e *Engine) Progress(start *time.Time, now time.Time) Progress {
	days := DaysElapsed(start, now)
	next, remaining := e.NextBadgeInfo(days)
	return Progress{
		Days:          days,
		Current:       e.CurrentBadge(days),
		Next:          next,
		DaysRemaining: remaining,
		Fraction:      ProgressFraction(days, next),
	}
}

// Reconcile reports the badge derived from start and whether it differs from
// the stored badge id. Callers persist only when changed is true.
func (e *Engine) Reconcile(storedBadgeID string, start *time.Time, now time.Time) (Badge, bool) {
	derived := e.CurrentBadge(DaysElapsed(start, now))
	return derived, derived.ID != storedBadgeID
}

// First is the zero-threshold reset tier.
func (e *Engine) First() Badge {
	return e.table[0]
}

// BadgeByID looks up a badge by id.
func (e *Engine) BadgeByID(id string) (Badge, bool) {
	for _, b := range e.table {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// ImageFor returns the image for a badge id, falling back to the first tier.
func (e *Engine) ImageFor(id string) string {
	if b, ok := e.BadgeByID(id); ok {
		return b.ImageURL
	}
	return e.table[0].ImageURL
}
