package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/models"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/civicpulse/civicpulse/internal/events"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// VerificationsForStatus is how many community verifications move a report
// from active to verified.
const VerificationsForStatus = 3

// statusSuccessors encodes the allowed report lifecycle transitions.
var statusSuccessors = map[enum.PostStatus][]enum.PostStatus{
	enum.PostStatusActive:   {enum.PostStatusVerified},
	enum.PostStatusVerified: {enum.PostStatusResolved, enum.PostStatusClosed},
}

// PostService handles post-related business logic: creation defaults, the
// server-side upvote/watch toggles, and the report lifecycle.
type PostService struct {
	db            *bun.DB
	model         *models.PostModel
	users         *UserService
	notifications *NotificationService
	publisher     events.Publisher
	logger        *zap.Logger
}

// NewPost creates a new post service.
func NewPost(
	db *bun.DB,
	model *models.PostModel,
	users *UserService,
	notifications *NotificationService,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		db:            db,
		model:         model,
		users:         users,
		notifications: notifications,
		logger:        logger.Named("post_service"),
	}
}

// SetPublisher wires a post-change event publisher. Publishing is
// best-effort and optional; a nil publisher disables fan-out.
func (s *PostService) SetPublisher(publisher events.Publisher) {
	s.publisher = publisher
}

// CreatePost validates and persists a new post, filling in every default
// the clients omit. Report posts always start active with a zero
// verification counter and an empty update list.
func (s *PostService) CreatePost(ctx context.Context, post *types.Post) error {
	if post.Content == "" {
		return types.ErrEmptyContent
	}

	if !post.Type.IsValid() {
		post.Type = enum.PostTypeGeneral
	}

	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}

	if post.Classification.Category == "" {
		post.Classification = types.DefaultClassification()
	}

	post.Engagement = types.Engagement{}

	if post.IsReport() {
		post.Status = enum.PostStatusActive
		post.VerifiedCount = 0
		post.Updates = []*types.ReportUpdate{}

		if post.Severity == "" {
			post.Severity = post.Classification.Severity
		}
	} else {
		post.Status = ""
		post.Severity = ""
	}

	if err := s.model.CreatePost(ctx, post); err != nil {
		return err
	}

	// Contribution points are best-effort: a failed stats update never
	// fails the post creation and is corrected by the next event.
	if post.IsReport() && post.AuthorID != nil {
		if err := s.users.RecordReport(ctx, *post.AuthorID); err != nil {
			s.logger.Warn("Failed to award report points", zap.Error(err))
		}
	}

	s.publish(ctx, post.ID, events.KindCreated)

	return nil
}

// ToggleUpvote flips the viewer's membership in the post's upvoter set and
// adjusts the counter to match, in one transaction. The returned state is
// the authoritative post-toggle membership and count. Concurrent toggles
// are serialized by the row lock; last write wins.
func (s *PostService) ToggleUpvote(ctx context.Context, postID, viewerID uuid.UUID) (bool, int, error) {
	var (
		upvoted  bool
		count    int
		authorID *uuid.UUID
	)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		post := new(types.Post)

		err := tx.NewSelect().
			Model(post).
			Column("id", "author_id", "upvoted_by", "engagement_upvotes").
			Where("id = ?", postID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrPostNotFound
			}

			return fmt.Errorf("failed to load post: %w", err)
		}

		authorID = post.AuthorID

		if post.HasUpvoted(viewerID) {
			_, err = tx.NewUpdate().
				Model((*types.Post)(nil)).
				Set("upvoted_by = array_remove(upvoted_by, ?)", viewerID).
				Set("engagement_upvotes = GREATEST(engagement_upvotes - 1, 0)").
				Where("id = ?", postID).
				Exec(ctx)
			upvoted = false
			count = post.Engagement.Upvotes - 1
		} else {
			_, err = tx.NewUpdate().
				Model((*types.Post)(nil)).
				Set("upvoted_by = array_append(upvoted_by, ?)", viewerID).
				Set("engagement_upvotes = engagement_upvotes + 1").
				Where("id = ?", postID).
				Exec(ctx)
			upvoted = true
			count = post.Engagement.Upvotes + 1
		}

		if err != nil {
			return fmt.Errorf("failed to toggle upvote: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, 0, err
	}

	if count < 0 {
		count = 0
	}

	// Author points ride the upvote event; failures are logged and dropped,
	// the stats just miss this event (spec: no automatic retry).
	if authorID != nil && *authorID != viewerID {
		delta := PointsPerUpvote
		upvoteDelta := 1

		if !upvoted {
			delta = -PointsPerUpvote
			upvoteDelta = -1
		}

		if err := s.users.ApplyPointDelta(ctx, *authorID, delta, upvoteDelta); err != nil {
			s.logger.Warn("Failed to apply upvote points",
				zap.String("authorId", authorID.String()),
				zap.Error(err))
		}

		if upvoted {
			s.notifications.NotifyUpvote(ctx, *authorID, postID, viewerID)
		}
	}

	s.publish(ctx, postID, events.KindEngagement)

	return upvoted, count, nil
}

// ToggleWatch flips the viewer's membership in the post's watcher set.
func (s *PostService) ToggleWatch(ctx context.Context, postID, viewerID uuid.UUID) (bool, error) {
	var watching bool

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		post := new(types.Post)

		err := tx.NewSelect().
			Model(post).
			Column("id", "watched_by").
			Where("id = ?", postID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrPostNotFound
			}

			return fmt.Errorf("failed to load post: %w", err)
		}

		watching = true

		for _, id := range post.WatchedBy {
			if id == viewerID {
				watching = false
				break
			}
		}

		if watching {
			_, err = tx.NewUpdate().
				Model((*types.Post)(nil)).
				Set("watched_by = array_append(watched_by, ?)", viewerID).
				Set("engagement_watchers = engagement_watchers + 1").
				Where("id = ?", postID).
				Exec(ctx)
		} else {
			_, err = tx.NewUpdate().
				Model((*types.Post)(nil)).
				Set("watched_by = array_remove(watched_by, ?)", viewerID).
				Set("engagement_watchers = GREATEST(engagement_watchers - 1, 0)").
				Where("id = ?", postID).
				Exec(ctx)
		}

		if err != nil {
			return fmt.Errorf("failed to toggle watch: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	s.publish(ctx, postID, events.KindEngagement)

	return watching, nil
}

// VerifyReport records a community verification. Reaching the verification
// threshold promotes the report from active to verified.
func (s *PostService) VerifyReport(ctx context.Context, postID, verifierID uuid.UUID) error {
	var (
		promoted bool
		targets  []uuid.UUID
	)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		post := new(types.Post)

		err := tx.NewSelect().
			Model(post).
			Column("id", "type", "status", "verified_count", "author_id", "watched_by").
			Where("id = ?", postID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrPostNotFound
			}

			return fmt.Errorf("failed to load post: %w", err)
		}

		if !post.IsReport() {
			return types.ErrNotReport
		}

		newCount := post.VerifiedCount + 1
		status := post.Status

		if status == enum.PostStatusActive && newCount >= VerificationsForStatus {
			status = enum.PostStatusVerified
			promoted = true
			targets = notificationTargets(post.AuthorID, post.WatchedBy, verifierID)
		}

		_, err = tx.NewUpdate().
			Model((*types.Post)(nil)).
			Set("verified_count = ?", newCount).
			Set("status = ?", status).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", postID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to record verification: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if promoted {
		s.notifications.NotifyStatusChange(ctx, targets, postID, enum.PostStatusVerified)
		s.publish(ctx, postID, events.KindStatus)
	}

	return nil
}

// UpdateReportStatus moves a report along its lifecycle, enforcing the
// active -> verified -> resolved/closed order. Resolving credits the
// author's resolved counter.
func (s *PostService) UpdateReportStatus(ctx context.Context, postID uuid.UUID, status enum.PostStatus) error {
	if !status.IsValid() {
		return types.ErrInvalidStatus
	}

	post, err := s.model.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if !post.IsReport() {
		return types.ErrNotReport
	}

	if !transitionAllowed(post.Status, status) {
		return fmt.Errorf("%w: %s -> %s", types.ErrInvalidStatus, post.Status, status)
	}

	if err := s.model.UpdateStatus(ctx, postID, status); err != nil {
		return err
	}

	targets := notificationTargets(post.AuthorID, post.WatchedBy, uuid.Nil)
	s.notifications.NotifyStatusChange(ctx, targets, postID, status)

	if status == enum.PostStatusResolved && post.AuthorID != nil {
		if err := s.users.RecordResolved(ctx, *post.AuthorID); err != nil {
			s.logger.Warn("Failed to record resolved report", zap.Error(err))
		}
	}

	s.publish(ctx, postID, events.KindStatus)

	return nil
}

// AddReportUpdate appends a community update to a report and notifies its
// watchers.
func (s *PostService) AddReportUpdate(ctx context.Context, update *types.ReportUpdate) error {
	if strings.TrimSpace(update.Content) == "" {
		return types.ErrEmptyContent
	}

	post, err := s.model.GetPost(ctx, update.PostID)
	if err != nil {
		return err
	}

	if !post.IsReport() {
		return types.ErrNotReport
	}

	if update.ID == uuid.Nil {
		update.ID = uuid.New()
	}

	if err := s.model.AddReportUpdate(ctx, update); err != nil {
		return err
	}

	var actor uuid.UUID
	if update.AuthorID != nil {
		actor = *update.AuthorID
	}

	targets := notificationTargets(post.AuthorID, post.WatchedBy, actor)
	s.notifications.NotifyReportUpdate(ctx, targets, update.PostID)

	s.publish(ctx, update.PostID, events.KindUpdate)

	return nil
}

// GetPost retrieves a post and counts the view.
func (s *PostService) GetPost(ctx context.Context, postID uuid.UUID) (*types.Post, error) {
	post, err := s.model.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.model.IncrementViews(ctx, postID); err != nil {
		s.logger.Warn("Failed to count view", zap.Error(err))
	}

	return post, nil
}

// GetFeed retrieves the newest posts, optionally filtered by city.
func (s *PostService) GetFeed(ctx context.Context, city string, limit int) ([]*types.Post, error) {
	return s.model.GetFeed(ctx, city, limit)
}

// SharePost counts a share of the post.
func (s *PostService) SharePost(ctx context.Context, postID uuid.UUID) error {
	if err := s.model.IncrementShares(ctx, postID); err != nil {
		return err
	}

	s.publish(ctx, postID, events.KindEngagement)

	return nil
}

// DeletePost removes a post owned by the author.
func (s *PostService) DeletePost(ctx context.Context, postID, authorID uuid.UUID) error {
	if err := s.model.DeletePost(ctx, postID, authorID); err != nil {
		return err
	}

	s.publish(ctx, postID, events.KindDeleted)

	return nil
}

func (s *PostService) publish(ctx context.Context, postID uuid.UUID, kind events.Kind) {
	if s.publisher == nil {
		return
	}

	s.publisher.PublishPostChange(ctx, events.PostEvent{
		PostID: postID,
		Kind:   kind,
		At:     time.Now(),
	})
}

// transitionAllowed checks the report lifecycle order.
func transitionAllowed(from, to enum.PostStatus) bool {
	for _, next := range statusSuccessors[from] {
		if next == to {
			return true
		}
	}

	return false
}

// notificationTargets collects the author and watchers, minus the acting
// user, deduplicated.
func notificationTargets(authorID *uuid.UUID, watchers []uuid.UUID, actor uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(watchers)+1)
	targets := make([]uuid.UUID, 0, len(watchers)+1)

	add := func(id uuid.UUID) {
		if id == uuid.Nil || id == actor {
			return
		}

		if _, ok := seen[id]; ok {
			return
		}

		seen[id] = struct{}{}
		targets = append(targets, id)
	}

	if authorID != nil {
		add(*authorID)
	}

	for _, id := range watchers {
		add(id)
	}

	return targets
}
