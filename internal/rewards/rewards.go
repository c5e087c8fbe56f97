// Package rewards holds the coin and XP economy rules.
package rewards

import (
	"strings"
	"time"
)

// Reason labels a coin award. It is used in events and metrics.
type Reason string

const (
	ReasonCheckIn       Reason = "daily_check_in"
	ReasonGratitude     Reason = "gratitude_entry"
	ReasonMentalWorkout Reason = "mental_workout"
	ReasonBreathing     Reason = "breathing_exercise"
	ReasonMentalGame    Reason = "mental_exercise"
	ReasonPhysical      Reason = "physical_exercise"
	ReasonPostShared    Reason = "post_shared"
	ReasonLikeMilestone Reason = "like_milestone"
	ReasonWisdomSharer  Reason = "wisdom_sharer"
)

const (
	CheckInXP          = 10
	CheckInCoins       = 5
	WeeklyBonusCoins   = 25
	WeeklyBonusEvery   = 7
	GratitudeXP        = 5
	GratitudeCoins     = 2
	MentalWorkoutCoins = 10
	BreathingCoins     = 5
	MentalGameCoins    = 8
	PhysicalCoins      = 5
	PostCoins          = 3

	LikeMilestone      = 10
	LikeMilestoneCoins = 15

	CommentMilestoneEvery = 5
	CommentMilestoneCoins = 10

	XPPerLevel = 100
)

// LevelFor derives the level from total XP. Negative XP stays at level 1.
func LevelFor(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// CheckedInToday reports whether last falls on the same UTC day as now.
func CheckedInToday(last *time.Time, now time.Time) bool {
	if last == nil || last.IsZero() {
		return false
	}
	ly, lm, ld := last.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return ly == ny && lm == nm && ld == nd
}

// Grant is the delta applied to a user's economy counters.
type Grant struct {
	XP     int
	Coins  int
	Bonus  int
	Reason Reason
}

// Total is the coin total including any bonus.
func (g Grant) Total() int { return g.Coins + g.Bonus }

// CheckInResult is the outcome of a daily check-in attempt.
type CheckInResult struct {
	Allowed   bool
	NewStreak int
	NewXP     int
	NewLevel  int
	Grant     Grant
}

// CheckIn applies the daily check-in rule. A second check-in on the same UTC
// day is not allowed and changes nothing.
func CheckIn(streak, xp int, last *time.Time, now time.Time) CheckInResult {
	if CheckedInToday(last, now) {
		return CheckInResult{NewStreak: streak, NewXP: xp, NewLevel: LevelFor(xp)}
	}
	newStreak := max(streak, 0) + 1
	g := Grant{XP: CheckInXP, Coins: CheckInCoins, Reason: ReasonCheckIn}
	if newStreak%WeeklyBonusEvery == 0 {
		g.Bonus = WeeklyBonusCoins
	}
	return CheckInResult{
		Allowed:   true,
		NewStreak: newStreak,
		NewXP:     xp + g.XP,
		NewLevel:  LevelFor(xp + g.XP),
		Grant:     g,
	}
}

// Gratitude is the grant for saving a gratitude entry.
func Gratitude() Grant {
	return Grant{XP: GratitudeXP, Coins: GratitudeCoins, Reason: ReasonGratitude}
}

// Exercise is a coping exercise offered when an urge hits.
type Exercise string

const (
	ExerciseBreathing Exercise = "breathing"
	ExerciseMental    Exercise = "mental"
	ExercisePhysical  Exercise = "physical"
	ExerciseWorkout   Exercise = "workout"
)

var exerciseGrants = map[Exercise]Grant{
	ExerciseBreathing: {Coins: BreathingCoins, Reason: ReasonBreathing},
	ExerciseMental:    {Coins: MentalGameCoins, Reason: ReasonMentalGame},
	ExercisePhysical:  {Coins: PhysicalCoins, Reason: ReasonPhysical},
	ExerciseWorkout:   {Coins: MentalWorkoutCoins, Reason: ReasonMentalWorkout},
}

// ParseExercise maps a request value to an Exercise. Empty selects the
// dashboard mental workout.
func ParseExercise(s string) (Exercise, bool) {
	e := Exercise(strings.ToLower(strings.TrimSpace(s)))
	if e == "" {
		return ExerciseWorkout, true
	}
	_, ok := exerciseGrants[e]
	return e, ok
}

// ExerciseGrant is the grant for completing e. Unknown kinds grant nothing.
func ExerciseGrant(e Exercise) (Grant, bool) {
	g, ok := exerciseGrants[e]
	return g, ok
}

// MentalWorkout is the grant for the dashboard mental workout.
func MentalWorkout() Grant {
	return exerciseGrants[ExerciseWorkout]
}

// PostShared is the grant for publishing a community post.
func PostShared() Grant {
	return Grant{Coins: PostCoins, Reason: ReasonPostShared}
}

// LikeMilestoneReached reports whether a like that brought the post to
// likeCount earns the author the milestone award. Self likes never count.
func LikeMilestoneReached(likeCount int, likerID, authorID uint) bool {
	return likeCount == LikeMilestone && likerID != authorID
}

// WisdomSharerReached reports whether a user's comment total earns the award.
func WisdomSharerReached(commentTotal int) bool {
	return commentTotal > 0 && commentTotal%CommentMilestoneEvery == 0
}
