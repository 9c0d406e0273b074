package database

import (
	"github.com/civicpulse/civicpulse/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	post         *models.PostModel
	comment      *models.CommentModel
	notification *models.NotificationModel
	user         *models.UserModel
	stats        *models.StatsModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		post:         models.NewPost(db, logger),
		comment:      models.NewComment(db, logger),
		notification: models.NewNotification(db, logger),
		user:         models.NewUser(db, logger),
		stats:        models.NewStats(db, logger),
	}
}

// Post returns the post model repository.
func (r *Repository) Post() *models.PostModel {
	return r.post
}

// Comment returns the comment model repository.
func (r *Repository) Comment() *models.CommentModel {
	return r.comment
}

// Notification returns the notification model repository.
func (r *Repository) Notification() *models.NotificationModel {
	return r.notification
}

// User returns the user model repository.
func (r *Repository) User() *models.UserModel {
	return r.user
}

// Stats returns the stats model repository.
func (r *Repository) Stats() *models.StatsModel {
	return r.stats
}
