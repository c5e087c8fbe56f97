// Package events publishes domain events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sankalpa/internal/observability"
)

// Routing keys for the topic exchange.
const (
	BadgeChanged   = "badge.changed"
	StreakReset    = "streak.reset"
	PostCreated    = "post.created"
	PostPinned     = "post.pinned"
	CoinsAwarded   = "coins.awarded"
	HeroAwardGiven = "post.hero_award"
)

// Envelope is the JSON body of every published message.
type Envelope struct {
	Type          string          `json:"type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEnvelope wraps payload for routingKey, stamping the correlation id from ctx.
func NewEnvelope(ctx context.Context, routingKey string, payload any, now time.Time) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", routingKey, err)
	}
	return Envelope{
		Type:          routingKey,
		OccurredAt:    now.UTC(),
		CorrelationID: observability.ExtractCorrelationID(ctx),
		Data:          data,
	}, nil
}

// BadgeChangedEvent is published when a stored badge is updated.
type BadgeChangedEvent struct {
	UserID   uint   `json:"user_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Days     int    `json:"days"`
	ImageURL string `json:"image_url"`
}

// StreakResetEvent is published on relapse or restart.
type StreakResetEvent struct {
	UserID       uint   `json:"user_id"`
	Kind         string `json:"kind"`
	PreviousDays int    `json:"previous_days"`
	StakeVoided  bool   `json:"stake_voided"`
}

// PostEvent is published for post lifecycle changes.
type PostEvent struct {
	PostID   uint   `json:"post_id"`
	AuthorID uint   `json:"author_id"`
	ActorID  uint   `json:"actor_id,omitempty"`
	Category string `json:"category,omitempty"`
}

// CoinsAwardedEvent is published for every coin grant.
type CoinsAwardedEvent struct {
	UserID uint   `json:"user_id"`
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// Publisher sends domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }

func jsonMarshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return b, nil
}
