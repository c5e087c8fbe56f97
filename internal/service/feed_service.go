package service

import (
	"context"
	"time"

	"sankalpa/internal/cache"
	"sankalpa/internal/feed"
	"sankalpa/internal/observability"
	"sankalpa/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
)

// FeedOptions bounds the snapshot the feed is ranked from.
type FeedOptions struct {
	WindowDays int
	Limit      int
	CacheTTL   time.Duration
}

type FeedService struct {
	posts   repository.PostRepository
	follows repository.FollowRepository
	opts    FeedOptions
	now     func() time.Time
}

func NewFeedService(posts repository.PostRepository, follows repository.FollowRepository, opts FeedOptions) *FeedService {
	if opts.WindowDays <= 0 {
		opts.WindowDays = 30
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	return &FeedService{posts: posts, follows: follows, opts: opts, now: systemNow}
}

// Feed ranks the recent posts for viewerID. The snapshot may come from the
// cache but scores are always computed against the current time.
func (s *FeedService) Feed(ctx context.Context, viewerID uint, mode feed.Mode) ([]feed.Scored, error) {
	now := s.now()
	snapshot, err := s.snapshot(ctx, now)
	if err != nil {
		return nil, err
	}

	ids, err := s.follows.FolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(observability.FeedRankDuration.WithLabelValues(string(mode)))
	ranked := feed.Rank(snapshot, mode, feed.NewFollowSet(ids...), now)
	timer.ObserveDuration()
	return ranked, nil
}

func (s *FeedService) snapshot(ctx context.Context, now time.Time) ([]feed.Post, error) {
	var snapshot []feed.Post
	fetch := func() error {
		since := now.Add(-time.Duration(s.opts.WindowDays) * 24 * time.Hour)
		posts, err := s.posts.ListRecent(ctx, since, s.opts.Limit)
		if err != nil {
			return err
		}
		snapshot = make([]feed.Post, 0, len(posts))
		for _, p := range posts {
			snapshot = append(snapshot, p.FeedView())
		}
		return nil
	}

	if s.opts.CacheTTL <= 0 {
		if err := fetch(); err != nil {
			return nil, err
		}
		return snapshot, nil
	}

	hit, err := cache.Aside(ctx, cache.FeedKey(s.opts.WindowDays, s.opts.Limit), &snapshot, s.opts.CacheTTL, fetch)
	if err != nil {
		return nil, err
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	observability.FeedCacheLookups.WithLabelValues(result).Inc()
	return snapshot, nil
}
