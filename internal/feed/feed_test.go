package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func likers(n int) []uint {
	ids := make([]uint, n)
	for i := range ids {
		ids[i] = uint(i + 100)
	}
	return ids
}

func TestRecencyScore(t *testing.T) {
	tests := []struct {
		name    string
		created time.Time
		want    float64
	}{
		{"created now", now, 24},
		{"six hours old", now.Add(-6 * time.Hour), 18},
		{"exactly a day", now.Add(-24 * time.Hour), 0},
		{"older than a day", now.Add(-72 * time.Hour), 0},
		{"future timestamp", now.Add(3 * time.Hour), 27},
		{"zero timestamp", time.Time{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RecencyScore(tt.created, now), 1e-9)
		})
	}
}

func TestRelevanceScore_FuturePost(t *testing.T) {
	p := Post{ID: 1, AuthorID: 9, CreatedAt: now.Add(2 * time.Hour), LikerIDs: likers(1)}
	assert.InDelta(t, 2.0+26.0, RelevanceScore(p, nil, now), 1e-9)
}

func TestRelevanceScore_WorkedExample(t *testing.T) {
	p := Post{ID: 1, AuthorID: 9, CreatedAt: now, LikerIDs: likers(10), CommentCount: 2}
	assert.InDelta(t, 50.0, RelevanceScore(p, nil, now), 1e-9)
}

func TestRelevanceScore_Components(t *testing.T) {
	base := Post{ID: 1, AuthorID: 9, CreatedAt: now.Add(-48 * time.Hour)}
	assert.Equal(t, 0.0, RelevanceScore(base, nil, now))

	followed := RelevanceScore(base, NewFollowSet(9), now)
	assert.Equal(t, 10.0, followed)

	pinned := base
	pinned.IsPinned = true
	assert.Equal(t, 100.0, RelevanceScore(pinned, nil, now)-RelevanceScore(base, nil, now))

	awarded := base
	awarded.HeroAwardIDs = []uint{1, 2, 2}
	assert.Equal(t, 10.0, RelevanceScore(awarded, nil, now))

	dupLikes := base
	dupLikes.LikerIDs = []uint{5, 5, 6}
	assert.Equal(t, 4.0, RelevanceScore(dupLikes, nil, now))

	negComments := base
	negComments.CommentCount = -3
	assert.Equal(t, 0.0, RelevanceScore(negComments, nil, now))
}

func TestRelevanceScore_Monotonic(t *testing.T) {
	prev := -1.0
	for n := 0; n < 20; n++ {
		p := Post{AuthorID: 1, CreatedAt: now, LikerIDs: likers(n), CommentCount: n, HeroAwardIDs: likers(n)}
		s := RelevanceScore(p, nil, now)
		assert.Greater(t, s, prev)
		prev = s
	}

	for _, mutate := range []func(*Post, int){
		func(p *Post, n int) { p.LikerIDs = likers(n) },
		func(p *Post, n int) { p.CommentCount = n },
		func(p *Post, n int) { p.HeroAwardIDs = likers(n) },
	} {
		last := -1.0
		for n := 0; n < 10; n++ {
			p := Post{AuthorID: 1, CreatedAt: now.Add(-time.Hour)}
			mutate(&p, n)
			s := RelevanceScore(p, nil, now)
			assert.Greater(t, s, last)
			last = s
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeRelevant, "relevant": ModeRelevant, "recent": ModeRecent, "following": ModeFollowing} {
		got, ok := ParseMode(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	got, ok := ParseMode("hot")
	assert.False(t, ok)
	assert.Equal(t, ModeRelevant, got)
}

// Scores without follows: 1=40, 2=25, 3=100, 4=0, 5=25. Author 11 owns 2 and 4.
func samplePosts() []Post {
	return []Post{
		{ID: 1, AuthorID: 10, CreatedAt: now.Add(-30 * time.Hour), LikerIDs: likers(20)},
		{ID: 2, AuthorID: 11, CreatedAt: now.Add(-1 * time.Hour), LikerIDs: likers(1)},
		{ID: 3, AuthorID: 12, CreatedAt: now.Add(-50 * time.Hour), IsPinned: true},
		{ID: 4, AuthorID: 11, CreatedAt: now.Add(-40 * time.Hour)},
		{ID: 5, AuthorID: 13, CreatedAt: now.Add(-2 * time.Hour), CommentCount: 1},
	}
}

func ids(scored []Scored) []uint {
	out := make([]uint, len(scored))
	for i, s := range scored {
		out[i] = s.ID
	}
	return out
}

func TestRank_Relevant(t *testing.T) {
	posts := samplePosts()
	got := Rank(posts, ModeRelevant, nil, now)
	assert.Equal(t, []uint{3, 1, 2, 5, 4}, ids(got))
	assert.InDelta(t, 100.0, got[0].Score, 1e-9)
}

func TestRank_Recent(t *testing.T) {
	got := Rank(samplePosts(), ModeRecent, nil, now)
	assert.Equal(t, []uint{2, 5, 1, 4, 3}, ids(got))
}

func TestRank_Following(t *testing.T) {
	follows := NewFollowSet(11)
	got := Rank(samplePosts(), ModeFollowing, follows, now)
	assert.Equal(t, []uint{2, 4, 3, 1, 5}, ids(got))

	seenOther := false
	for _, s := range got {
		if !s.Followed {
			seenOther = true
			continue
		}
		assert.False(t, seenOther, "followed post %d ranked after a non-followed post", s.ID)
	}
}

func TestRank_StableTiesAndNoMutation(t *testing.T) {
	posts := []Post{
		{ID: 7, AuthorID: 1, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: 8, AuthorID: 2, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: 9, AuthorID: 3, CreatedAt: now.Add(-48 * time.Hour)},
	}
	got := Rank(posts, ModeRelevant, nil, now)
	assert.Equal(t, []uint{7, 8, 9}, ids(got))

	input := samplePosts()
	_ = Rank(input, ModeRecent, nil, now)
	assert.Equal(t, samplePosts(), input)
}

func TestPlanPin(t *testing.T) {
	posts := []Post{{ID: 1, IsPinned: true}, {ID: 2}, {ID: 3, IsPinned: true}}

	plan := PlanPin(posts, 2)
	assert.Equal(t, uint(2), plan.Pin)
	assert.ElementsMatch(t, []uint{1, 3}, plan.Unpin)

	plan = PlanPin(posts, 3)
	assert.Equal(t, uint(0), plan.Pin)
	assert.Equal(t, []uint{1}, plan.Unpin)

	plan = PlanPin([]Post{{ID: 4, IsPinned: true}}, 4)
	require.True(t, plan.Empty())
}

func TestCategory_Valid(t *testing.T) {
	assert.True(t, CategorySupport.Valid())
	assert.False(t, Category("random").Valid())
}
