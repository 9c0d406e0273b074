// Package feed maintains an in-memory view of the post feed with optimistic
// engagement toggles. A toggle flips the local state immediately, then
// reconciles with the authoritative result of the remote call, rolling back
// on failure. Failed toggles are never retried automatically.
package feed

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPostNotCached is returned when a toggle targets a post outside the
// current feed view.
var ErrPostNotCached = errors.New("post not in feed cache")

// Backend is the remote half of the feed: the authoritative post store.
type Backend interface {
	GetFeed(ctx context.Context, city string, limit int) ([]*types.Post, error)
	GetPost(ctx context.Context, postID uuid.UUID) (*types.Post, error)
	ToggleUpvote(ctx context.Context, postID, viewerID uuid.UUID) (bool, int, error)
}

// Feed is a city-scoped view over the post collection. All methods are safe
// for concurrent use; two overlapping toggles on the same post are resolved
// last-write-wins by the backend's row lock.
type Feed struct {
	backend Backend
	city    string
	limit   int
	logger  *zap.Logger

	mu    sync.RWMutex
	posts map[uuid.UUID]*types.Post
	order []uuid.UUID
}

// New creates an empty feed view; call Refresh to populate it.
func New(backend Backend, city string, limit int, logger *zap.Logger) *Feed {
	return &Feed{
		backend: backend,
		city:    city,
		limit:   limit,
		logger:  logger.Named("feed"),
		posts:   make(map[uuid.UUID]*types.Post),
	}
}

// Refresh replaces the cached view with the backend's current feed page.
func (f *Feed) Refresh(ctx context.Context) error {
	posts, err := f.backend.GetFeed(ctx, f.city, f.limit)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.posts = make(map[uuid.UUID]*types.Post, len(posts))
	f.order = make([]uuid.UUID, 0, len(posts))

	for _, post := range posts {
		f.posts[post.ID] = post
		f.order = append(f.order, post.ID)
	}

	return nil
}

// Snapshot returns the cached posts in feed order.
func (f *Feed) Snapshot() []*types.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]*types.Post, 0, len(f.order))
	for _, id := range f.order {
		if post, ok := f.posts[id]; ok {
			out = append(out, post)
		}
	}

	return out
}

// Get returns the cached copy of a post, or nil when it is not in view.
func (f *Feed) Get(postID uuid.UUID) *types.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.posts[postID]
}

// ToggleUpvote optimistically flips the viewer's upvote on a cached post.
// The local state changes before the remote call; on success it is replaced
// by the authoritative result, on failure it is restored to the pre-toggle
// values. The returned state is what the view shows after reconciliation.
func (f *Feed) ToggleUpvote(ctx context.Context, postID, viewerID uuid.UUID) (bool, int, error) {
	f.mu.Lock()

	post, ok := f.posts[postID]
	if !ok {
		f.mu.Unlock()
		return false, 0, ErrPostNotCached
	}

	prevUpvoted := post.HasUpvoted(viewerID)
	prevCount := post.Engagement.Upvotes

	// Optimistic local flip
	setUpvoteState(post, viewerID, !prevUpvoted, toggledCount(prevCount, !prevUpvoted))
	f.mu.Unlock()

	upvoted, count, err := f.backend.ToggleUpvote(ctx, postID, viewerID)

	f.mu.Lock()
	defer f.mu.Unlock()

	// The post may have left the view while the call was in flight; the
	// eventual result is simply discarded then.
	post, ok = f.posts[postID]

	if err != nil {
		if ok {
			setUpvoteState(post, viewerID, prevUpvoted, prevCount)
		}

		f.logger.Warn("Upvote toggle failed, rolled back",
			zap.String("postId", postID.String()),
			zap.Error(err))

		return prevUpvoted, prevCount, err
	}

	if ok {
		setUpvoteState(post, viewerID, upvoted, count)
	}

	return upvoted, count, nil
}

// HandleEvent reconciles the cached view with a post-change notification.
// Intended as the handler for an events.Subscriber.
func (f *Feed) HandleEvent(ctx context.Context, event events.PostEvent) {
	if event.Kind == events.KindDeleted {
		f.mu.Lock()
		delete(f.posts, event.PostID)
		f.mu.Unlock()

		return
	}

	f.mu.RLock()
	_, cached := f.posts[event.PostID]
	f.mu.RUnlock()

	// New posts require a full refresh to pick up feed ordering.
	if !cached {
		if event.Kind != events.KindCreated {
			return
		}

		if err := f.Refresh(ctx); err != nil {
			f.logger.Warn("Failed to refresh feed after create event", zap.Error(err))
		}

		return
	}

	post, err := f.backend.GetPost(ctx, event.PostID)
	if err != nil {
		f.logger.Warn("Failed to reload post after event",
			zap.String("postId", event.PostID.String()),
			zap.Error(err))

		return
	}

	f.mu.Lock()
	if _, ok := f.posts[event.PostID]; ok {
		f.posts[event.PostID] = post
	}
	f.mu.Unlock()
}

// setUpvoteState pins a cached post's upvoter membership and counter to the
// given values.
func setUpvoteState(post *types.Post, viewerID uuid.UUID, upvoted bool, count int) {
	has := post.HasUpvoted(viewerID)

	switch {
	case upvoted && !has:
		post.UpvotedBy = append(post.UpvotedBy, viewerID)
	case !upvoted && has:
		post.UpvotedBy = slices.DeleteFunc(post.UpvotedBy, func(id uuid.UUID) bool {
			return id == viewerID
		})
	}

	if count < 0 {
		count = 0
	}

	post.Engagement.Upvotes = count
}

func toggledCount(count int, upvoting bool) int {
	if upvoting {
		return count + 1
	}

	if count > 0 {
		return count - 1
	}

	return 0
}
