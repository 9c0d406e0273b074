package feed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/civicpulse/civicpulse/internal/events"
	"github.com/civicpulse/civicpulse/internal/feed"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeBackend is an in-memory post store implementing feed.Backend.
type fakeBackend struct {
	posts     map[uuid.UUID]*types.Post
	order     []uuid.UUID
	toggleErr error
	getErr    error
}

func newFakeBackend(posts ...*types.Post) *fakeBackend {
	b := &fakeBackend{posts: make(map[uuid.UUID]*types.Post)}
	for _, post := range posts {
		b.posts[post.ID] = post
		b.order = append(b.order, post.ID)
	}

	return b
}

func (b *fakeBackend) GetFeed(_ context.Context, _ string, _ int) ([]*types.Post, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}

	out := make([]*types.Post, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, clonePost(b.posts[id]))
	}

	return out, nil
}

func (b *fakeBackend) GetPost(_ context.Context, postID uuid.UUID) (*types.Post, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}

	post, ok := b.posts[postID]
	if !ok {
		return nil, types.ErrPostNotFound
	}

	return clonePost(post), nil
}

func (b *fakeBackend) ToggleUpvote(_ context.Context, postID, viewerID uuid.UUID) (bool, int, error) {
	if b.toggleErr != nil {
		return false, 0, b.toggleErr
	}

	post, ok := b.posts[postID]
	if !ok {
		return false, 0, types.ErrPostNotFound
	}

	if post.HasUpvoted(viewerID) {
		kept := post.UpvotedBy[:0]
		for _, id := range post.UpvotedBy {
			if id != viewerID {
				kept = append(kept, id)
			}
		}

		post.UpvotedBy = kept
		post.Engagement.Upvotes--

		return false, post.Engagement.Upvotes, nil
	}

	post.UpvotedBy = append(post.UpvotedBy, viewerID)
	post.Engagement.Upvotes++

	return true, post.Engagement.Upvotes, nil
}

func clonePost(p *types.Post) *types.Post {
	c := *p
	c.UpvotedBy = append([]uuid.UUID(nil), p.UpvotedBy...)
	c.WatchedBy = append([]uuid.UUID(nil), p.WatchedBy...)

	return &c
}

func newTestFeed(t *testing.T, backend *fakeBackend) *feed.Feed {
	t.Helper()

	f := feed.New(backend, "Springfield", 50, zaptest.NewLogger(t))
	require.NoError(t, f.Refresh(context.Background()))

	return f
}

func makePost(upvotes int) *types.Post {
	return &types.Post{
		ID:         uuid.New(),
		Content:    "Streetlight out on 5th Avenue",
		City:       "Springfield",
		Type:       enum.PostTypeReport,
		Engagement: types.Engagement{Upvotes: upvotes},
	}
}

func TestToggleUpvoteRoundTrip(t *testing.T) {
	t.Parallel()

	post := makePost(3)
	backend := newFakeBackend(post)
	f := newTestFeed(t, backend)
	viewer := uuid.New()

	// First toggle adds the upvote
	upvoted, count, err := f.ToggleUpvote(context.Background(), post.ID, viewer)
	require.NoError(t, err)
	assert.True(t, upvoted)
	assert.Equal(t, 4, count)

	cached := f.Get(post.ID)
	require.NotNil(t, cached)
	assert.True(t, cached.HasUpvoted(viewer))
	assert.Equal(t, 4, cached.Engagement.Upvotes)
	assert.Len(t, cached.UpvotedBy, 1)

	// Second toggle restores the original state
	upvoted, count, err = f.ToggleUpvote(context.Background(), post.ID, viewer)
	require.NoError(t, err)
	assert.False(t, upvoted)
	assert.Equal(t, 3, count)

	cached = f.Get(post.ID)
	require.NotNil(t, cached)
	assert.False(t, cached.HasUpvoted(viewer))
	assert.Equal(t, 3, cached.Engagement.Upvotes)
	assert.Empty(t, cached.UpvotedBy)
}

func TestToggleUpvoteRollbackOnFailure(t *testing.T) {
	t.Parallel()

	post := makePost(7)
	backend := newFakeBackend(post)
	f := newTestFeed(t, backend)
	viewer := uuid.New()

	backend.toggleErr = errors.New("connection reset")

	upvoted, count, err := f.ToggleUpvote(context.Background(), post.ID, viewer)
	require.Error(t, err)
	assert.False(t, upvoted)
	assert.Equal(t, 7, count)

	// Local state must equal the pre-toggle values exactly
	cached := f.Get(post.ID)
	require.NotNil(t, cached)
	assert.False(t, cached.HasUpvoted(viewer))
	assert.Equal(t, 7, cached.Engagement.Upvotes)
}

func TestToggleUpvoteRollbackWhenAlreadyUpvoted(t *testing.T) {
	t.Parallel()

	viewer := uuid.New()
	post := makePost(2)
	post.UpvotedBy = []uuid.UUID{viewer}

	backend := newFakeBackend(post)
	f := newTestFeed(t, backend)

	backend.toggleErr = errors.New("timeout")

	upvoted, count, err := f.ToggleUpvote(context.Background(), post.ID, viewer)
	require.Error(t, err)
	assert.True(t, upvoted)
	assert.Equal(t, 2, count)

	cached := f.Get(post.ID)
	require.NotNil(t, cached)
	assert.True(t, cached.HasUpvoted(viewer))
	assert.Equal(t, 2, cached.Engagement.Upvotes)
}

func TestToggleUpvoteUnknownPost(t *testing.T) {
	t.Parallel()

	f := newTestFeed(t, newFakeBackend(makePost(0)))

	_, _, err := f.ToggleUpvote(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, feed.ErrPostNotCached)
}

func TestRefreshReplacesView(t *testing.T) {
	t.Parallel()

	first := makePost(1)
	backend := newFakeBackend(first)
	f := newTestFeed(t, backend)

	require.Len(t, f.Snapshot(), 1)

	second := makePost(0)
	backend.posts[second.ID] = second
	backend.order = append(backend.order, second.ID)

	require.NoError(t, f.Refresh(context.Background()))

	snapshot := f.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, first.ID, snapshot[0].ID)
	assert.Equal(t, second.ID, snapshot[1].ID)
}

func TestHandleEvent(t *testing.T) {
	t.Parallel()

	post := makePost(5)
	backend := newFakeBackend(post)
	f := newTestFeed(t, backend)

	// Engagement event reloads the post
	backend.posts[post.ID].Engagement.Upvotes = 9
	f.HandleEvent(context.Background(), events.PostEvent{PostID: post.ID, Kind: events.KindEngagement})
	assert.Equal(t, 9, f.Get(post.ID).Engagement.Upvotes)

	// Created event for an unseen post refreshes the whole view
	created := makePost(0)
	backend.posts[created.ID] = created
	backend.order = append(backend.order, created.ID)
	f.HandleEvent(context.Background(), events.PostEvent{PostID: created.ID, Kind: events.KindCreated})
	assert.NotNil(t, f.Get(created.ID))

	// Deleted event drops the post from view
	f.HandleEvent(context.Background(), events.PostEvent{PostID: post.ID, Kind: events.KindDeleted})
	assert.Nil(t, f.Get(post.ID))
}
