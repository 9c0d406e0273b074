// Package pulse derives the city dashboard from the post and user tables.
// The snapshot is pure read-side state: every refresh re-issues the full set
// of capped queries and recomputes from scratch, and a refresh is triggered
// both explicitly and by post-change events.
package pulse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/civicpulse/civicpulse/internal/events"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// WeeklyDays is the size of the daily report series, ending today.
	WeeklyDays = 7

	// TopIssueLimit caps the ranked issue list.
	TopIssueLimit = 10

	// ContributorLimit caps the ranked contributor list.
	ContributorLimit = 10

	// snapshotKey holds the latest snapshot in the cache database so a
	// restarted process serves the dashboard without a cold recompute.
	snapshotKey = "pulse:snapshot"
)

// Source is the read-side query surface the dashboard reduces over.
type Source interface {
	CountReportsBetween(ctx context.Context, from, to time.Time) (int, error)
	GetRecentReports(ctx context.Context, since time.Time, limit int) ([]*types.Post, error)
	GetTopReports(ctx context.Context, limit int) ([]*types.Post, error)
	GetTopContributors(ctx context.Context, limit int) ([]*types.User, error)
}

// Service recomputes and caches the pulse snapshot.
type Service struct {
	source    Source
	cache     rueidis.Client
	scanLimit int
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.RWMutex
	snapshot *types.PulseSnapshot
}

// New creates a pulse service. scanLimit caps how many recent reports a
// single refresh scans for the weekly series. cache may be nil, in which
// case snapshots live only in memory.
func New(source Source, cache rueidis.Client, scanLimit int, logger *zap.Logger) *Service {
	return &Service{
		source:    source,
		cache:     cache,
		scanLimit: scanLimit,
		logger:    logger.Named("pulse"),
		now:       time.Now,
	}
}

// Snapshot returns the last computed snapshot, or nil before the first
// successful refresh.
func (s *Service) Snapshot() *types.PulseSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

// Cached returns the in-memory snapshot, falling back to the persisted
// copy so a restarted process serves the dashboard without recomputing.
// Returns nil when neither exists.
func (s *Service) Cached(ctx context.Context) *types.PulseSnapshot {
	if snapshot := s.Snapshot(); snapshot != nil {
		return snapshot
	}

	if s.cache == nil {
		return nil
	}

	cmd := s.cache.B().Get().Key(snapshotKey).Build()

	raw, err := s.cache.Do(ctx, cmd).AsBytes()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			s.logger.Warn("Failed to load cached snapshot", zap.Error(err))
		}

		return nil
	}

	snapshot := new(types.PulseSnapshot)
	if err := sonic.Unmarshal(raw, snapshot); err != nil {
		s.logger.Warn("Failed to decode cached snapshot", zap.Error(err))

		return nil
	}

	s.mu.Lock()
	if s.snapshot == nil {
		s.snapshot = snapshot
	}
	s.mu.Unlock()

	return snapshot
}

// Refresh recomputes the full snapshot and replaces the cached one.
func (s *Service) Refresh(ctx context.Context) (*types.PulseSnapshot, error) {
	now := s.now()
	todayStart := startOfDay(now)
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -(WeeklyDays - 1))

	today, err := s.source.CountReportsBetween(ctx, todayStart, todayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to count today's reports: %w", err)
	}

	yesterday, err := s.source.CountReportsBetween(ctx, yesterdayStart, todayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count yesterday's reports: %w", err)
	}

	recent, err := s.source.GetRecentReports(ctx, weekStart, s.scanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent reports: %w", err)
	}

	topReports, err := s.source.GetTopReports(ctx, TopIssueLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top reports: %w", err)
	}

	contributors, err := s.source.GetTopContributors(ctx, ContributorLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top contributors: %w", err)
	}

	snapshot := &types.PulseSnapshot{
		Today:        today,
		Yesterday:    yesterday,
		Weekly:       reduceWeekly(recent, todayStart),
		TopIssues:    reduceTopIssues(topReports),
		Contributors: reduceContributors(contributors),
		RefreshedAt:  now,
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	s.persist(ctx, snapshot)

	return snapshot, nil
}

// persist is best effort; a failed write only costs the next process a
// cold recompute.
func (s *Service) persist(ctx context.Context, snapshot *types.PulseSnapshot) {
	if s.cache == nil {
		return
	}

	payload, err := sonic.Marshal(snapshot)
	if err != nil {
		s.logger.Warn("Failed to encode snapshot", zap.Error(err))

		return
	}

	cmd := s.cache.B().Set().Key(snapshotKey).Value(string(payload)).Build()
	if err := s.cache.Do(ctx, cmd).Error(); err != nil {
		s.logger.Warn("Failed to persist snapshot", zap.Error(err))
	}
}

// HandleEvent refreshes the snapshot when a post changes. Intended as the
// handler for an events.Subscriber; failures are logged and dropped since
// the next event or explicit refresh recomputes everything anyway.
func (s *Service) HandleEvent(ctx context.Context, event events.PostEvent) {
	switch event.Kind {
	case events.KindCreated, events.KindStatus, events.KindDeleted, events.KindEngagement:
		if _, err := s.Refresh(ctx); err != nil {
			s.logger.Warn("Failed to refresh pulse after event",
				zap.String("kind", string(event.Kind)),
				zap.Error(err))
		}
	case events.KindUpdate:
		// Report updates don't move any dashboard number.
	}
}

// reduceWeekly buckets reports into exactly WeeklyDays day entries in
// chronological order ending today. Reports count by creation day; resolved
// count by the day the report last changed, for reports now resolved.
func reduceWeekly(reports []*types.Post, todayStart time.Time) []types.DayCount {
	weekly := make([]types.DayCount, WeeklyDays)
	for i := range weekly {
		weekly[i].Day = todayStart.AddDate(0, 0, i-(WeeklyDays-1))
	}

	firstDay := weekly[0].Day

	bucket := func(t time.Time) (int, bool) {
		idx := int(startOfDay(t).Sub(firstDay).Hours() / 24)
		if idx < 0 || idx >= WeeklyDays {
			return 0, false
		}

		return idx, true
	}

	for _, report := range reports {
		if idx, ok := bucket(report.CreatedAt); ok {
			weekly[idx].Reports++
		}

		if report.Status == enum.PostStatusResolved {
			if idx, ok := bucket(report.UpdatedAt); ok {
				weekly[idx].Resolved++
			}
		}
	}

	return weekly
}

func reduceTopIssues(reports []*types.Post) []*types.TopIssue {
	issues := make([]*types.TopIssue, 0, len(reports))

	for _, report := range reports {
		issues = append(issues, &types.TopIssue{
			PostID:   report.ID,
			Content:  report.Content,
			Category: report.Classification.Category,
			District: report.District,
			Upvotes:  report.Engagement.Upvotes,
			Watchers: report.Engagement.Watchers,
		})
	}

	return issues
}

func reduceContributors(users []*types.User) []*types.Contributor {
	contributors := make([]*types.Contributor, 0, len(users))

	for _, user := range users {
		contributors = append(contributors, &types.Contributor{
			UserID:      user.ID,
			DisplayName: user.DisplayName,
			Reports:     user.Stats.Reports,
			Upvotes:     user.Stats.TotalUpvotes,
			Score:       user.Stats.Reports*10 + user.Stats.TotalUpvotes*2,
		})
	}

	return contributors
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
