package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/models"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Point values awarded for contribution events.
const (
	PointsPerUpvote = 2
	PointsPerReport = 10
)

// UserService handles user-related business logic, including the
// gamification progression transaction.
type UserService struct {
	db            *bun.DB
	model         *models.UserModel
	notifications *NotificationService
	logger        *zap.Logger
}

// NewUser creates a new user service.
func NewUser(
	db *bun.DB,
	model *models.UserModel,
	notifications *NotificationService,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		db:            db,
		model:         model,
		notifications: notifications,
		logger:        logger.Named("user_service"),
	}
}

// CompleteOnboarding commits the accumulated wizard data atomically into a
// fresh User row. Nothing is persisted if validation fails.
func (s *UserService) CompleteOnboarding(ctx context.Context, data *types.OnboardingData) (*types.User, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	user := data.ToUser(time.Now())

	if err := s.model.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Onboarding completed",
		zap.String("userId", user.ID.String()),
		zap.String("persona", string(user.Persona)))

	return user, nil
}

// ApplyPointDelta applies a signed point delta to a user's stats and
// resolves level promotion as a single read-modify-write transaction.
// upvoteDelta adjusts the lifetime upvote counter in the same write.
// An aborted transaction leaves the stats unchanged; the caller decides
// whether the error is fatal (it usually logs and drops it).
func (s *UserService) ApplyPointDelta(ctx context.Context, userID uuid.UUID, delta, upvoteDelta int) error {
	var (
		promoted bool
		newLevel enum.UserLevel
	)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user := new(types.User)

		err := tx.NewSelect().
			Model(user).
			Column("id", "stats_points", "stats_level", "stats_total_upvotes").
			Where("id = ?", userID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrUserNotFound
			}

			return fmt.Errorf("failed to load stats: %w", err)
		}

		next, didPromote := user.Stats.ApplyDelta(delta)
		promoted = didPromote
		newLevel = next.Level

		totalUpvotes := user.Stats.TotalUpvotes + upvoteDelta
		if totalUpvotes < 0 {
			totalUpvotes = 0
		}

		_, err = tx.NewUpdate().
			Model((*types.User)(nil)).
			Set("stats_points = ?", next.Points).
			Set("stats_level = ?", next.Level).
			Set("stats_total_upvotes = ?", totalUpvotes).
			Where("id = ?", userID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to persist stats: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if promoted {
		s.logger.Info("User promoted",
			zap.String("userId", userID.String()),
			zap.String("level", string(newLevel)))

		badgeID := "level_" + string(newLevel)
		if err := s.model.AddBadge(ctx, userID, badgeID); err != nil {
			s.logger.Warn("Failed to grant level badge", zap.Error(err))
		}

		s.notifications.NotifyLevelUp(ctx, userID, newLevel, badgeID)
	}

	return nil
}

// RecordReport bumps the user's lifetime report counter and awards the
// report creation points.
func (s *UserService) RecordReport(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.NewUpdate().
		Model((*types.User)(nil)).
		Set("stats_reports = stats_reports + 1").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record report: %w", err)
	}

	return s.ApplyPointDelta(ctx, userID, PointsPerReport, 0)
}

// RecordResolved bumps the user's resolved counter when one of their
// reports reaches the resolved status.
func (s *UserService) RecordResolved(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.NewUpdate().
		Model((*types.User)(nil)).
		Set("stats_resolved_count = stats_resolved_count + 1").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record resolved report: %w", err)
	}

	return nil
}

// GetUser retrieves a user profile.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return s.model.GetUser(ctx, userID)
}

// UpdateProfile persists edited profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, user *types.User) error {
	return s.model.UpdateProfile(ctx, user)
}

// UpdateAvatar stores the uploaded avatar's URL on the profile.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) error {
	return s.model.UpdateAvatar(ctx, userID, avatarURL)
}
