package repository

import (
	"context"
	"regexp"
	"testing"

	"sankalpa/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	comment := &models.Comment{Content: "Stay strong", PostID: 1, UserID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), comment)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	p := seedPost(t, db, author.ID, testNow, false)
	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Create(ctx, &models.Comment{UserID: author.ID, PostID: p.ID, Content: text}))
	}

	list, err := repo.ListByPost(ctx, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Content)

	count, err := repo.CountByUser(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestFollowRepository_Toggle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	following, err := repo.Toggle(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, following)

	_, err = repo.Toggle(ctx, 1, 3)
	require.NoError(t, err)

	ids, err := repo.FolloweeIDs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{2, 3}, ids)

	following, err = repo.Toggle(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, following)

	ids, err = repo.FolloweeIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, ids)
}

func TestJournalRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJournalRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "arjun")
	require.NoError(t, repo.CreateDiaryEntry(ctx, &models.DiaryEntry{UserID: u.ID, Content: "family", Date: "2026-04-30", CreatedAt: testNow.Add(-24 * testHour)}))
	require.NoError(t, repo.CreateDiaryEntry(ctx, &models.DiaryEntry{UserID: u.ID, Content: "health", Date: "2026-05-01", CreatedAt: testNow}))

	entries, err := repo.ListDiaryEntries(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "health", entries[0].Content)

	require.NoError(t, users.ResetStreak(ctx, ResetInput{UserID: u.ID, BadgeID: "clown", At: testNow, LogRelapse: true, Reason: "boredom"}))
	relapses, err := repo.ListRelapses(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, relapses, 1)
	assert.Equal(t, "boredom", relapses[0].Reason)
}
