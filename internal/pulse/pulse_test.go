package pulse_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/civicpulse/civicpulse/internal/events"
	"github.com/civicpulse/civicpulse/internal/pulse"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeSource serves canned query results implementing pulse.Source.
type fakeSource struct {
	counts       map[time.Time]int
	recent       []*types.Post
	top          []*types.Post
	contributors []*types.User
	err          error

	refreshes int
}

func (f *fakeSource) CountReportsBetween(_ context.Context, from, _ time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}

	f.refreshes++

	return f.counts[from], nil
}

func (f *fakeSource) GetRecentReports(_ context.Context, _ time.Time, _ int) ([]*types.Post, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.recent, nil
}

func (f *fakeSource) GetTopReports(_ context.Context, limit int) ([]*types.Post, error) {
	if f.err != nil {
		return nil, f.err
	}

	if len(f.top) > limit {
		return f.top[:limit], nil
	}

	return f.top, nil
}

func (f *fakeSource) GetTopContributors(_ context.Context, _ int) ([]*types.User, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.contributors, nil
}

func startOfToday() time.Time {
	now := time.Now()
	year, month, day := now.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}

func reportOn(day time.Time, status enum.PostStatus) *types.Post {
	post := &types.Post{
		ID:        uuid.New(),
		Type:      enum.PostTypeReport,
		Status:    status,
		Content:   "fixture report",
		CreatedAt: day.Add(10 * time.Hour),
		UpdatedAt: day.Add(12 * time.Hour),
	}

	return post
}

func TestRefreshWeeklySeries(t *testing.T) {
	t.Parallel()

	today := startOfToday()

	// One report per day for 7 days; the two oldest are resolved.
	var recent []*types.Post

	for i := range 7 {
		day := today.AddDate(0, 0, -i)

		status := enum.PostStatusActive
		if i >= 5 {
			status = enum.PostStatusResolved
		}

		recent = append(recent, reportOn(day, status))
	}

	source := &fakeSource{recent: recent, counts: map[time.Time]int{today: 1}}
	svc := pulse.New(source, nil, 500, zaptest.NewLogger(t))

	snapshot, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	// Exactly 7 entries, chronological, ending today
	require.Len(t, snapshot.Weekly, 7)
	assert.True(t, snapshot.Weekly[6].Day.Equal(today))

	for i := range 6 {
		assert.True(t, snapshot.Weekly[i].Day.Before(snapshot.Weekly[i+1].Day))
		assert.True(t, snapshot.Weekly[i+1].Day.Sub(snapshot.Weekly[i].Day) == 24*time.Hour)
	}

	// One report per bucket
	for _, day := range snapshot.Weekly {
		assert.Equal(t, 1, day.Reports)
	}

	// Resolved counts land on the update day of the resolved fixtures
	assert.Equal(t, 1, snapshot.Weekly[0].Resolved)
	assert.Equal(t, 1, snapshot.Weekly[1].Resolved)
	assert.Equal(t, 0, snapshot.Weekly[6].Resolved)

	assert.Equal(t, 1, snapshot.Today)
	assert.Equal(t, 0, snapshot.Yesterday)
}

func TestRefreshRanksIssuesAndContributors(t *testing.T) {
	t.Parallel()

	today := startOfToday()
	top := reportOn(today, enum.PostStatusActive)
	top.Content = "Broken water main"
	top.District = "Downtown"
	top.Classification = types.Classification{Category: "INFRASTRUCTURE"}
	top.Engagement = types.Engagement{Upvotes: 42, Watchers: 9}

	user := &types.User{
		ID:          uuid.New(),
		DisplayName: "Sam",
		Stats:       types.UserStats{Reports: 4, TotalUpvotes: 11},
	}

	source := &fakeSource{
		top:          []*types.Post{top},
		contributors: []*types.User{user},
	}

	svc := pulse.New(source, nil, 500, zaptest.NewLogger(t))

	snapshot, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot.TopIssues, 1)
	assert.Equal(t, "Broken water main", snapshot.TopIssues[0].Content)
	assert.Equal(t, "INFRASTRUCTURE", snapshot.TopIssues[0].Category)
	assert.Equal(t, 42, snapshot.TopIssues[0].Upvotes)

	require.Len(t, snapshot.Contributors, 1)
	assert.Equal(t, "Sam", snapshot.Contributors[0].DisplayName)
	assert.Equal(t, 4*10+11*2, snapshot.Contributors[0].Score)
}

func TestCachedSnapshotSurvivesRestart(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	cache, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})

	ctx := context.Background()
	today := startOfToday()
	logger := zaptest.NewLogger(t)

	source := &fakeSource{counts: map[time.Time]int{today: 3}}
	first := pulse.New(source, cache, 500, logger)

	_, err = first.Refresh(ctx)
	require.NoError(t, err)

	// A fresh service over the same cache serves the persisted snapshot
	// without touching the database
	cold := &fakeSource{}
	second := pulse.New(cold, cache, 500, logger)
	require.Nil(t, second.Snapshot())

	snapshot := second.Cached(ctx)
	require.NotNil(t, snapshot)
	assert.Equal(t, 3, snapshot.Today)
	assert.Zero(t, cold.refreshes)

	// The loaded snapshot is mirrored in memory
	assert.NotNil(t, second.Snapshot())
}

func TestSnapshotBeforeRefresh(t *testing.T) {
	t.Parallel()

	svc := pulse.New(&fakeSource{}, nil, 500, zaptest.NewLogger(t))
	assert.Nil(t, svc.Snapshot())
}

func TestRefreshPropagatesErrors(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: errors.New("db down")}
	svc := pulse.New(source, nil, 500, zaptest.NewLogger(t))

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Nil(t, svc.Snapshot())
}

func TestHandleEventRefreshes(t *testing.T) {
	t.Parallel()

	source := &fakeSource{counts: map[time.Time]int{}}
	svc := pulse.New(source, nil, 500, zaptest.NewLogger(t))

	svc.HandleEvent(context.Background(), events.PostEvent{Kind: events.KindCreated})
	assert.NotNil(t, svc.Snapshot())

	// Report updates don't change dashboard numbers, so no refresh
	before := svc.Snapshot()
	svc.HandleEvent(context.Background(), events.PostEvent{Kind: events.KindUpdate})
	assert.Same(t, before, svc.Snapshot())
}
