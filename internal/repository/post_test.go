package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"sankalpa/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{UserID: 1, Content: "Day 3", Category: "success"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), post)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_PinRollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","is_pinned" FROM "posts"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Pin(context.Background(), 3)
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByIDWithDetails(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	fan := seedUser(t, db, "fan")
	p := seedPost(t, db, author.ID, testNow, false)

	liked, err := repo.Like(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	require.NoError(t, comments.Create(ctx, &models.Comment{UserID: fan.ID, PostID: p.ID, Content: "proud of you"}))
	require.NoError(t, comments.Create(ctx, &models.Comment{UserID: fan.ID, PostID: p.ID, Content: "again"}))
	awarded, err := repo.AddHeroAward(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, awarded)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", got.User.Username)
	assert.Equal(t, 2, got.CommentsCount)

	view := got.FeedView()
	assert.Equal(t, []uint{fan.ID}, view.LikerIDs)
	assert.Equal(t, []uint{fan.ID}, view.HeroAwardIDs)

	_, err = repo.GetByID(ctx, 999)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPostRepository_LikeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	p := seedPost(t, db, author.ID, testNow, false)

	first, err := repo.Like(ctx, 7, p.ID)
	require.NoError(t, err)
	second, err := repo.Like(ctx, 7, p.ID)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)

	count, err := repo.CountLikes(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	isLiked, err := repo.IsLiked(ctx, 7, p.ID)
	require.NoError(t, err)
	assert.True(t, isLiked)

	removed, err := repo.Unlike(ctx, 7, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Unlike(ctx, 7, p.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	again, err := repo.AddHeroAward(ctx, 7, p.ID)
	require.NoError(t, err)
	assert.True(t, again)
	again, err = repo.AddHeroAward(ctx, 7, p.ID)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestPostRepository_ListRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	old := seedPost(t, db, author.ID, testNow.Add(-40*24*time.Hour), false)
	a := seedPost(t, db, author.ID, testNow.Add(-2*time.Hour), false)
	b := seedPost(t, db, author.ID, testNow.Add(-1*time.Hour), false)

	posts, err := repo.ListRecent(ctx, testNow.Add(-30*24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, b.ID, posts[0].ID)
	assert.Equal(t, a.ID, posts[1].ID)
	for _, p := range posts {
		assert.NotEqual(t, old.ID, p.ID)
	}

	posts, err = repo.ListRecent(ctx, testNow.Add(-30*24*time.Hour), 1)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestPostRepository_Pin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	p1 := seedPost(t, db, author.ID, testNow, true)
	p2 := seedPost(t, db, author.ID, testNow, false)
	p3 := seedPost(t, db, author.ID, testNow, true)

	plan, err := repo.Pin(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, p2.ID, plan.Pin)
	assert.ElementsMatch(t, []uint{p1.ID, p3.ID}, plan.Unpin)

	var pinned []uint
	require.NoError(t, db.Model(&models.Post{}).Where("is_pinned = ?", true).Pluck("id", &pinned).Error)
	assert.Equal(t, []uint{p2.ID}, pinned)

	plan, err = repo.Pin(ctx, p2.ID)
	require.NoError(t, err)
	assert.True(t, plan.Empty())

	_, err = repo.Pin(ctx, 999)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
