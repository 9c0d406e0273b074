package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// UserModel handles database operations for user profiles.
type UserModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUser creates a new user model.
func NewUser(db *bun.DB, logger *zap.Logger) *UserModel {
	return &UserModel{
		db:     db,
		logger: logger.Named("db_user"),
	}
}

// CreateUser inserts a new user row.
func (r *UserModel) CreateUser(ctx context.Context, user *types.User) error {
	_, err := r.db.NewInsert().
		Model(user).
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return types.ErrUserAlreadyExists
		}

		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID.
func (r *UserModel) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user := new(types.User)

	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *UserModel) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	user := new(types.User)

	err := r.db.NewSelect().
		Model(user).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetUsersByIDs retrieves users keyed by ID. Missing IDs are simply absent
// from the result, not an error.
func (r *UserModel) GetUsersByIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*types.User, error) {
	result := make(map[uuid.UUID]*types.User, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var users []*types.User

	err := r.db.NewSelect().
		Model(&users).
		Where("id IN (?)", bun.In(userIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}

	for _, user := range users {
		result[user.ID] = user
	}

	return result, nil
}

// UpdateProfile updates the mutable profile fields of a user.
func (r *UserModel) UpdateProfile(ctx context.Context, user *types.User) error {
	user.UpdatedAt = time.Now()

	res, err := r.db.NewUpdate().
		Model(user).
		Column("display_name", "city", "district", "interests", "preferences", "updated_at").
		Where("id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return types.ErrUserNotFound
	}

	return nil
}

// UpdateAvatar stores a new avatar URL for a user.
func (r *UserModel) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) error {
	_, err := r.db.NewUpdate().
		Model((*types.User)(nil)).
		Set("avatar_url = ?", avatarURL).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}

	return nil
}

// AddBadge appends a badge identifier if the user does not already hold it.
func (r *UserModel) AddBadge(ctx context.Context, userID uuid.UUID, badgeID string) error {
	_, err := r.db.NewUpdate().
		Model((*types.User)(nil)).
		Set("badges = array_append(badges, ?)", badgeID).
		Where("id = ?", userID).
		Where("NOT (? = ANY(badges))", badgeID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add badge: %w", err)
	}

	return nil
}
