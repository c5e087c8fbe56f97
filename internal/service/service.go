// Package service implements the application use cases on top of the
// repositories and the streak and feed engines.
package service

import (
	"context"
	"log/slog"
	"time"

	"sankalpa/internal/events"
	"sankalpa/internal/observability"
	"sankalpa/internal/repository"
	"sankalpa/internal/rewards"
)

// publish sends an event and only logs a failure. Domain writes are already
// committed at this point and must not be reported as failed.
func publish(ctx context.Context, pub events.Publisher, routingKey string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, payload); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "event publish failed",
			slog.String("routing_key", routingKey),
			slog.String("error", err.Error()),
		)
	}
}

// rewarder applies coin and XP grants and announces them.
type rewarder struct {
	users  repository.UserRepository
	events events.Publisher
}

func (r rewarder) grant(ctx context.Context, userID uint, g rewards.Grant) error {
	if err := r.users.AddRewards(ctx, userID, g); err != nil {
		return err
	}
	r.announce(ctx, userID, g)
	return nil
}

func (r rewarder) announce(ctx context.Context, userID uint, g rewards.Grant) {
	total := g.Total()
	if total <= 0 {
		return
	}
	observability.RecordCoins(string(g.Reason), total)
	publish(ctx, r.events, events.CoinsAwarded, events.CoinsAwardedEvent{
		UserID: userID,
		Amount: total,
		Reason: string(g.Reason),
	})
}

func systemNow() time.Time { return time.Now().UTC() }
