package database

import (
	"github.com/civicpulse/civicpulse/internal/database/service"
	"github.com/civicpulse/civicpulse/internal/events"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	post         *service.PostService
	comment      *service.CommentService
	notification *service.NotificationService
	user         *service.UserService
}

// NewService creates a new service instance with all services.
func NewService(db *bun.DB, repository *Repository, logger *zap.Logger) *Service {
	notificationService := service.NewNotification(repository.Notification(), logger)
	userService := service.NewUser(db, repository.User(), notificationService, logger)

	return &Service{
		post:         service.NewPost(db, repository.Post(), userService, notificationService, logger),
		comment:      service.NewComment(repository.Comment(), repository.Post(), notificationService, logger),
		notification: notificationService,
		user:         userService,
	}
}

// SetPublisher wires a post-change event publisher into the write path.
// Kept separate from construction so the database client has no hard
// dependency on Redis being up.
func (s *Service) SetPublisher(publisher events.Publisher) {
	s.post.SetPublisher(publisher)
}

// Post returns the post service.
func (s *Service) Post() *service.PostService {
	return s.post
}

// Comment returns the comment service.
func (s *Service) Comment() *service.CommentService {
	return s.comment
}

// Notification returns the notification service.
func (s *Service) Notification() *service.NotificationService {
	return s.notification
}

// User returns the user service.
func (s *Service) User() *service.UserService {
	return s.user
}
