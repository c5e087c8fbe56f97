package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	FeedKeyPrefix = "feed:snapshot:%dd:%d"
	feedKeyGlob   = "feed:snapshot:*"
)

const (
	UserTTL = 5 * time.Minute
	FeedTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// FeedKey identifies a feed snapshot by window size and row limit.
func FeedKey(windowDays, limit int) string {
	return fmt.Sprintf(FeedKeyPrefix, windowDays, limit)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, UserKey(id))
	}
	Invalidate(ctx, keys...)
}

// InvalidateFeed drops every feed snapshot. Snapshots hold raw engagement
// only, so any like, comment, award, pin or new post makes them stale.
func InvalidateFeed(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, feedKeyGlob, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	Invalidate(ctx, keys...)
}
