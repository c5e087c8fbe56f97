package service

import (
	"context"
	"strings"
	"time"

	"sankalpa/internal/events"
	"sankalpa/internal/models"
	"sankalpa/internal/observability"
	"sankalpa/internal/repository"
	"sankalpa/internal/streak"
)

const maxRelapseReasonLen = 500

// Reset kinds reported in streak.reset events.
const (
	ResetRelapse = "relapse"
	ResetRestart = "restart"
)

type StreakService struct {
	users  repository.UserRepository
	engine *streak.Engine
	events events.Publisher
	now    func() time.Time
}

// StreakView is the dashboard payload for the streak counter.
type StreakView struct {
	streak.Progress
	StreakStartDate *time.Time `json:"streak_start_date"`
	CheckInStreak   int        `json:"check_in_streak"`
	StakeActive     bool       `json:"stake_active"`
}

func NewStreakService(users repository.UserRepository, engine *streak.Engine, pub events.Publisher) *StreakService {
	return &StreakService{
		users:  users,
		engine: engine,
		events: pub,
		now:    systemNow,
	}
}

// GetStreak returns the derived progress and persists the badge when the
// stored one is out of date.
func (s *StreakService) GetStreak(ctx context.Context, userID uint) (view *StreakView, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "StreakService", "GetStreak")
	defer func() { observability.EndSpan(span, err) }()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, user, s.now())
}

// Relapse resets the streak and stores the reason in the relapse log when
// one is given.
func (s *StreakService) Relapse(ctx context.Context, userID uint, reason string) (*StreakView, error) {
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) > maxRelapseReasonLen {
		return nil, models.NewValidationError("Reason too long (max 500 characters)")
	}
	return s.reset(ctx, userID, ResetRelapse, reason)
}

// Restart resets the streak without a relapse log entry.
func (s *StreakService) Restart(ctx context.Context, userID uint) (*StreakView, error) {
	return s.reset(ctx, userID, ResetRestart, "")
}

func (s *StreakService) reset(ctx context.Context, userID uint, kind, reason string) (view *StreakView, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "StreakService", kind)
	defer func() { observability.EndSpan(span, err) }()

	before, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	first := s.engine.First()
	err = s.users.ResetStreak(ctx, repository.ResetInput{
		UserID:     userID,
		BadgeID:    first.ID,
		At:         now,
		LogRelapse: reason != "",
		Reason:     reason,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.StreakReset, events.StreakResetEvent{
		UserID:       userID,
		Kind:         kind,
		PreviousDays: streak.DaysElapsed(before.StreakStartDate, now),
		StakeVoided:  before.StakeActive,
	})
	if before.CurrentBadge != first.ID {
		s.badgeChanged(ctx, userID, before.CurrentBadge, first, 0)
	}

	after, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, after, now)
}

func (s *StreakService) reconcile(ctx context.Context, user *models.User, now time.Time) (*StreakView, error) {
	progress := s.engine.Progress(user.StreakStartDate, now)
	derived, changed := s.engine.Reconcile(user.CurrentBadge, user.StreakStartDate, now)
	if changed {
		updated, err := s.users.UpdateBadge(ctx, user.ID, user.CurrentBadge, derived.ID)
		if err != nil {
			return nil, err
		}
		if updated {
			s.badgeChanged(ctx, user.ID, user.CurrentBadge, derived, progress.Days)
		}
	}

	return &StreakView{
		Progress:        progress,
		StreakStartDate: user.StreakStartDate,
		CheckInStreak:   user.CheckInStreak,
		StakeActive:     user.StakeActive,
	}, nil
}

func (s *StreakService) badgeChanged(ctx context.Context, userID uint, from string, to streak.Badge, days int) {
	observability.BadgeChanges.WithLabelValues(to.ID).Inc()
	publish(ctx, s.events, events.BadgeChanged, events.BadgeChangedEvent{
		UserID:   userID,
		From:     from,
		To:       to.ID,
		Days:     days,
		ImageURL: to.ImageURL,
	})
}

// Badges exposes the configured progression.
func (s *StreakService) Badges() streak.Table {
	return s.engine.Table()
}
