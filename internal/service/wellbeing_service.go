package service

import (
	"context"
	"strings"
	"time"

	"sankalpa/internal/events"
	"sankalpa/internal/models"
	"sankalpa/internal/repository"
	"sankalpa/internal/rewards"
)

const maxGratitudeLen = 1000

// WellbeingService covers the daily check-in, the gratitude diary, coping
// exercises and the relapse history.
type WellbeingService struct {
	users   repository.UserRepository
	journal repository.JournalRepository
	rewards rewarder
	now     func() time.Time
}

// CheckInOutcome is returned by a successful daily check-in.
type CheckInOutcome struct {
	Streak int `json:"check_in_streak"`
	XP     int `json:"xp"`
	Level  int `json:"level"`
	Coins  int `json:"coins_awarded"`
	Bonus  int `json:"weekly_bonus"`
}

func NewWellbeingService(users repository.UserRepository, journal repository.JournalRepository, pub events.Publisher) *WellbeingService {
	return &WellbeingService{
		users:   users,
		journal: journal,
		rewards: rewarder{users: users, events: pub},
		now:     systemNow,
	}
}

// CheckIn grants the daily reward once per UTC day.
func (s *WellbeingService) CheckIn(ctx context.Context, userID uint) (*CheckInOutcome, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res := rewards.CheckIn(user.CheckInStreak, user.XP, user.LastCheckIn, now)
	if !res.Allowed {
		return nil, models.NewConflictError("Already checked in today")
	}

	applied, err := s.users.ApplyCheckIn(ctx, userID, res, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, models.NewConflictError("Already checked in today")
	}
	s.rewards.announce(ctx, userID, res.Grant)

	return &CheckInOutcome{
		Streak: res.NewStreak,
		XP:     res.NewXP,
		Level:  res.NewLevel,
		Coins:  res.Grant.Coins,
		Bonus:  res.Grant.Bonus,
	}, nil
}

func (s *WellbeingService) AddGratitude(ctx context.Context, userID uint, content string) (*models.DiaryEntry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len([]rune(content)) > maxGratitudeLen {
		return nil, models.NewValidationError("Entry too long (max 1000 characters)")
	}

	now := s.now()
	entry := &models.DiaryEntry{
		UserID:    userID,
		Content:   content,
		Date:      models.DayKey(now),
		CreatedAt: now,
	}
	if err := s.journal.CreateDiaryEntry(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.rewards.grant(ctx, userID, rewards.Gratitude()); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *WellbeingService) ListGratitude(ctx context.Context, userID uint, limit int) ([]*models.DiaryEntry, error) {
	return s.journal.ListDiaryEntries(ctx, userID, limit)
}

// CompleteExercise grants the reward for the named coping exercise. An empty
// kind is the dashboard mental workout.
func (s *WellbeingService) CompleteExercise(ctx context.Context, userID uint, kind string) (rewards.Grant, error) {
	exercise, ok := rewards.ParseExercise(kind)
	if !ok {
		return rewards.Grant{}, models.NewValidationError("Unknown exercise (use breathing, mental, physical or workout)")
	}
	g, _ := rewards.ExerciseGrant(exercise)
	if err := s.rewards.grant(ctx, userID, g); err != nil {
		return rewards.Grant{}, err
	}
	return g, nil
}

func (s *WellbeingService) ListRelapses(ctx context.Context, userID uint, limit int) ([]*models.RelapseEntry, error) {
	return s.journal.ListRelapses(ctx, userID, limit)
}
