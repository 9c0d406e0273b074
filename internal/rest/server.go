// Package rest wires the HTTP API surface.
package rest

import (
	"net/http"

	"github.com/civicpulse/civicpulse/internal/ai"
	"github.com/civicpulse/civicpulse/internal/database"
	"github.com/civicpulse/civicpulse/internal/pulse"
	"github.com/civicpulse/civicpulse/internal/rest/handler"
	"github.com/civicpulse/civicpulse/internal/rest/middleware"
	"github.com/civicpulse/civicpulse/internal/setup/config"
	"github.com/civicpulse/civicpulse/internal/state"
	"github.com/civicpulse/civicpulse/internal/storage"
	"github.com/klauspost/compress/gzhttp"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// Dependencies bundles everything the API surface needs.
type Dependencies struct {
	DB         database.Client
	Pulse      *pulse.Service
	Classifier *ai.Classifier
	Extractor  *ai.InterestExtractor
	Assistant  *ai.Assistant
	Media      *storage.MediaClient
	Sessions   *state.SessionStore
	Themes     *state.ThemeStore
	Languages  *state.LanguageStore
	Config     *config.APIConfig
	Logger     *zap.Logger
}

// Server implements the REST API service.
type Server struct {
	postHandler         *handler.PostHandler
	commentHandler      *handler.CommentHandler
	userHandler         *handler.UserHandler
	sessionHandler      *handler.SessionHandler
	notificationHandler *handler.NotificationHandler
	pulseHandler        *handler.PulseHandler
	chatHandler         *handler.ChatHandler
	mediaHandler        *handler.MediaHandler
	preferencesHandler  *handler.PreferencesHandler
}

// NewServer creates a new REST API server.
func NewServer(deps Dependencies) (http.Handler, error) {
	logger := deps.Logger.Named("rest")

	server := &Server{
		postHandler:         handler.NewPostHandler(deps.DB, deps.Classifier, deps.Config.FeedPageSize, logger),
		commentHandler:      handler.NewCommentHandler(deps.DB, logger),
		userHandler:         handler.NewUserHandler(deps.DB, deps.Media, logger),
		sessionHandler:      handler.NewSessionHandler(deps.DB, deps.Sessions, deps.Extractor, logger),
		notificationHandler: handler.NewNotificationHandler(deps.DB, logger),
		pulseHandler:        handler.NewPulseHandler(deps.Pulse, logger),
		chatHandler:         handler.NewChatHandler(deps.DB, deps.Assistant, logger),
		mediaHandler:        handler.NewMediaHandler(deps.Media, logger),
		preferencesHandler:  handler.NewPreferencesHandler(deps.Themes, deps.Languages, logger),
	}

	sessionMiddleware := middleware.New(deps.Sessions, deps.Languages, logger)

	router := bunrouter.New()

	router.Use(sessionMiddleware.AsRESTMiddleware).WithGroup("/v1", func(g *bunrouter.Group) {
		g.POST("/posts", server.postHandler.CreatePost)
		g.GET("/posts/feed", server.postHandler.GetFeed)
		g.GET("/posts/trending", server.postHandler.GetTrending)
		g.GET("/posts/:id", server.postHandler.GetPost)
		g.DELETE("/posts/:id", server.postHandler.DeletePost)
		g.POST("/posts/:id/upvote", server.postHandler.ToggleUpvote)
		g.POST("/posts/:id/watch", server.postHandler.ToggleWatch)
		g.POST("/posts/:id/share", server.postHandler.SharePost)
		g.POST("/posts/:id/verify", server.postHandler.VerifyReport)
		g.PUT("/posts/:id/status", server.postHandler.UpdateStatus)
		g.POST("/posts/:id/updates", server.postHandler.AddUpdate)

		g.POST("/posts/:id/comments", server.commentHandler.AddComment)
		g.GET("/posts/:id/comments", server.commentHandler.ListComments)
		g.POST("/comments/:id/like", server.commentHandler.ToggleLike)
		g.DELETE("/comments/:id", server.commentHandler.DeleteComment)

		g.GET("/session", server.sessionHandler.GetSession)
		g.POST("/session/signin", server.sessionHandler.SignIn)
		g.POST("/session/signout", server.sessionHandler.SignOut)
		g.POST("/onboarding/start", server.sessionHandler.StartOnboarding)
		g.PUT("/onboarding", server.sessionHandler.UpdateOnboarding)
		g.POST("/onboarding/interests", server.sessionHandler.ExtractInterests)
		g.POST("/onboarding/complete", server.sessionHandler.CompleteOnboarding)

		g.GET("/users/me", server.userHandler.GetProfile)
		g.PUT("/users/me", server.userHandler.UpdateProfile)
		g.POST("/users/me/avatar", server.userHandler.UploadAvatar)
		g.GET("/users/:id", server.userHandler.GetUser)

		g.GET("/notifications", server.notificationHandler.List)
		g.GET("/notifications/unread", server.notificationHandler.Unread)
		g.POST("/notifications/:id/read", server.notificationHandler.MarkRead)
		g.POST("/notifications/read-all", server.notificationHandler.MarkAllRead)

		g.GET("/pulse", server.pulseHandler.GetSnapshot)
		g.POST("/pulse/refresh", server.pulseHandler.Refresh)

		g.POST("/chat", server.chatHandler.Stream)

		g.POST("/media/posts", server.mediaHandler.UploadPostMedia)

		g.GET("/preferences/theme", server.preferencesHandler.GetTheme)
		g.PUT("/preferences/theme", server.preferencesHandler.SetTheme)
		g.GET("/preferences/language", server.preferencesHandler.GetLanguage)
		g.PUT("/preferences/language", server.preferencesHandler.SetLanguage)
	})

	return gzhttp.GzipHandler(router), nil
}
