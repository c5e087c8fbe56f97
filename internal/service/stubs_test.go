package service

import (
	"context"
	"sync"
	"time"

	"sankalpa/internal/feed"
	"sankalpa/internal/models"
	"sankalpa/internal/repository"
	"sankalpa/internal/rewards"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func daysAgo(n int) *time.Time {
	t := testNow.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn       func(context.Context, *models.User) error
	getByIDFn      func(context.Context, uint) (*models.User, error)
	updateBadgeFn  func(context.Context, uint, string, string) (bool, error)
	resetStreakFn  func(context.Context, repository.ResetInput) error
	applyCheckInFn func(context.Context, uint, rewards.CheckInResult, time.Time) (bool, error)
	addRewardsFn   func(context.Context, uint, rewards.Grant) error
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) UpdateBadge(ctx context.Context, id uint, from, to string) (bool, error) {
	return s.updateBadgeFn(ctx, id, from, to)
}
func (s *userRepoStub) ResetStreak(ctx context.Context, in repository.ResetInput) error {
	return s.resetStreakFn(ctx, in)
}
func (s *userRepoStub) ApplyCheckIn(ctx context.Context, id uint, res rewards.CheckInResult, at time.Time) (bool, error) {
	return s.applyCheckInFn(ctx, id, res, at)
}
func (s *userRepoStub) AddRewards(ctx context.Context, id uint, g rewards.Grant) error {
	return s.addRewardsFn(ctx, id, g)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:       func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		updateBadgeFn:  func(_ context.Context, _ uint, _, _ string) (bool, error) { return true, nil },
		resetStreakFn:  func(_ context.Context, _ repository.ResetInput) error { return nil },
		applyCheckInFn: func(_ context.Context, _ uint, _ rewards.CheckInResult, _ time.Time) (bool, error) { return true, nil },
		addRewardsFn:   func(_ context.Context, _ uint, _ rewards.Grant) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	listRecentFn   func(context.Context, time.Time, int) ([]*models.Post, error)
	likeFn         func(context.Context, uint, uint) (bool, error)
	unlikeFn       func(context.Context, uint, uint) (bool, error)
	isLikedFn      func(context.Context, uint, uint) (bool, error)
	countLikesFn   func(context.Context, uint) (int64, error)
	addHeroAwardFn func(context.Context, uint, uint) (bool, error)
	pinFn          func(context.Context, uint) (feed.PinPlan, error)
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error { return s.createFn(ctx, p) }
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListRecent(ctx context.Context, since time.Time, limit int) ([]*models.Post, error) {
	return s.listRecentFn(ctx, since, limit)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) CountLikes(ctx context.Context, postID uint) (int64, error) {
	return s.countLikesFn(ctx, postID)
}
func (s *postRepoStub) AddHeroAward(ctx context.Context, grantorID, postID uint) (bool, error) {
	return s.addHeroAwardFn(ctx, grantorID, postID)
}
func (s *postRepoStub) Pin(ctx context.Context, postID uint) (feed.PinPlan, error) {
	return s.pinFn(ctx, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn:      func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id, UserID: 99}, nil },
		listRecentFn:   func(_ context.Context, _ time.Time, _ int) ([]*models.Post, error) { return nil, nil },
		likeFn:         func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isLikedFn:      func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countLikesFn:   func(_ context.Context, _ uint) (int64, error) { return 1, nil },
		addHeroAwardFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		pinFn:          func(_ context.Context, id uint) (feed.PinPlan, error) { return feed.PinPlan{Pin: id}, nil },
	}
}

type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	listByPostFn  func(context.Context, uint, int) ([]*models.Comment, error)
	countByUserFn func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit)
}
func (s *commentRepoStub) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return s.countByUserFn(ctx, userID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		listByPostFn:  func(_ context.Context, _ uint, _ int) ([]*models.Comment, error) { return nil, nil },
		countByUserFn: func(_ context.Context, _ uint) (int64, error) { return 1, nil },
	}
}

type followRepoStub struct {
	toggleFn      func(context.Context, uint, uint) (bool, error)
	followeeIDsFn func(context.Context, uint) ([]uint, error)
}

func (s *followRepoStub) Toggle(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.toggleFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) FolloweeIDs(ctx context.Context, followerID uint) ([]uint, error) {
	return s.followeeIDsFn(ctx, followerID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		toggleFn:      func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		followeeIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
	}
}

type journalRepoStub struct {
	createDiaryFn  func(context.Context, *models.DiaryEntry) error
	listDiaryFn    func(context.Context, uint, int) ([]*models.DiaryEntry, error)
	listRelapsesFn func(context.Context, uint, int) ([]*models.RelapseEntry, error)
}

func (s *journalRepoStub) CreateDiaryEntry(ctx context.Context, e *models.DiaryEntry) error {
	return s.createDiaryFn(ctx, e)
}
func (s *journalRepoStub) ListDiaryEntries(ctx context.Context, userID uint, limit int) ([]*models.DiaryEntry, error) {
	return s.listDiaryFn(ctx, userID, limit)
}
func (s *journalRepoStub) ListRelapses(ctx context.Context, userID uint, limit int) ([]*models.RelapseEntry, error) {
	return s.listRelapsesFn(ctx, userID, limit)
}

func noopJournalRepo() *journalRepoStub {
	return &journalRepoStub{
		createDiaryFn:  func(_ context.Context, _ *models.DiaryEntry) error { return nil },
		listDiaryFn:    func(_ context.Context, _ uint, _ int) ([]*models.DiaryEntry, error) { return nil, nil },
		listRelapsesFn: func(_ context.Context, _ uint, _ int) ([]*models.RelapseEntry, error) { return nil, nil },
	}
}

type published struct {
	key     string
	payload any
}

// recordingPublisher captures events in publish order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{key: key, payload: payload})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.key
	}
	return out
}
