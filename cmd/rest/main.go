package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civicpulse/civicpulse/internal/ai"
	"github.com/civicpulse/civicpulse/internal/events"
	"github.com/civicpulse/civicpulse/internal/pulse"
	"github.com/civicpulse/civicpulse/internal/redis"
	"github.com/civicpulse/civicpulse/internal/rest"
	"github.com/civicpulse/civicpulse/internal/setup"
	"github.com/civicpulse/civicpulse/internal/setup/telemetry"
	"github.com/civicpulse/civicpulse/internal/state"
	"go.uber.org/zap"
)

// APILogDir specifies where API server log files are stored.
const APILogDir = "logs/api_logs"

// Server timeouts.
const (
	ReadTimeout     = 5 * time.Second
	ShutdownTimeout = 30 * time.Second
)

func main() {
	ctx := context.Background()

	app, err := setup.InitializeApp(ctx, telemetry.ServiceAPI, APILogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(ctx)

	stateClient, err := app.RedisManager.GetClient(redis.StateDBIndex)
	if err != nil {
		app.Logger.Fatal("Failed to connect state store", zap.Error(err))
	}

	eventsClient, err := app.RedisManager.GetClient(redis.EventsDBIndex)
	if err != nil {
		app.Logger.Fatal("Failed to connect events channel", zap.Error(err))
	}

	cacheClient, err := app.RedisManager.GetClient(redis.CacheDBIndex)
	if err != nil {
		app.Logger.Fatal("Failed to connect cache", zap.Error(err))
	}

	// Post changes fan out to the pulse aggregator through Redis pub/sub.
	app.DB.Service().SetPublisher(events.NewRedisPublisher(eventsClient, app.Logger))

	cfg := &app.Config.API
	openAICfg := &app.Config.Common.OpenAI

	pulseService := pulse.New(app.DB.Model().Stats(), cacheClient, cfg.PulseScanLimit, app.Logger)

	handler, err := rest.NewServer(rest.Dependencies{
		DB:         app.DB,
		Pulse:      pulseService,
		Classifier: ai.NewClassifier(app.AIClient.Chat(), openAICfg.ClassifierModel, app.Logger),
		Extractor:  ai.NewInterestExtractor(app.AIClient.Chat(), openAICfg.ExtractorModel, app.Logger),
		Assistant:  ai.NewAssistant(app.AIClient.Chat(), openAICfg.AssistantModel, app.Logger),
		Media:      app.Media,
		Sessions:   state.NewSessionStore(stateClient, app.Logger),
		Themes:     state.NewThemeStore(stateClient, app.Logger),
		Languages:  state.NewLanguageStore(stateClient, app.Logger),
		Config:     cfg,
		Logger:     app.Logger,
	})
	if err != nil {
		app.Logger.Fatal("Failed to create REST server", zap.Error(err))
	}

	subscriberCtx, stopSubscriber := context.WithCancel(ctx)
	defer stopSubscriber()

	go func() {
		subscriber := events.NewSubscriber(eventsClient, app.Logger)

		err := subscriber.Listen(subscriberCtx, func(event events.PostEvent) {
			pulseService.HandleEvent(subscriberCtx, event)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			app.Logger.Error("Post event subscription ended", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      handler,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
	}

	go func() {
		log.Printf("API server started on %s", cfg.ListenAddress)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("Failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	stopSubscriber()

	shutdownCtx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
}
