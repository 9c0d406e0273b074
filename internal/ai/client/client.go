package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civicpulse/civicpulse/internal/setup/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	ErrNoProvidersAvailable = errors.New("no providers available")
	ErrContentBlocked       = errors.New("content blocked by AI safety filters")
)

// AIClient implements the Client interface. Requests are never retried;
// callers are expected to fall back to defaults when a request fails.
type AIClient struct {
	client        *openai.Client
	breaker       *gobreaker.CircuitBreaker
	semaphore     *semaphore.Weighted
	modelMappings map[string]string
	logger        *zap.Logger
}

// NewClient creates a new AIClient.
func NewClient(cfg *config.OpenAI, breakerCfg *config.CircuitBreaker, logger *zap.Logger) (*AIClient, error) {
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(90*time.Second),
		option.WithMaxRetries(0),
	)

	return &AIClient{
		client:        &client,
		breaker:       gobreaker.NewCircuitBreaker(breakerSettings(breakerCfg, logger)),
		semaphore:     semaphore.NewWeighted(cfg.MaxConcurrent),
		modelMappings: cfg.ModelMappings,
		logger:        logger.Named("ai_client"),
	}, nil
}

// breakerSettings builds gobreaker settings from config, falling back to
// defaults for unset values.
func breakerSettings(cfg *config.CircuitBreaker, logger *zap.Logger) gobreaker.Settings {
	maxRequests := cfg.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return gobreaker.Settings{
		Name:        "openai",
		MaxRequests: maxRequests,
		Timeout:     timeout,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
}

// Chat returns a ChatCompletions implementation.
func (c *AIClient) Chat() ChatCompletions {
	return &chatCompletions{client: c}
}

// chatCompletions implements the ChatCompletions interface.
type chatCompletions struct {
	client *AIClient
}

// New makes a chat completion request.
func (c *chatCompletions) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	// Map model name
	originalModel := params.Model
	if mappedModel, ok := c.client.modelMappings[originalModel]; ok {
		params.Model = mappedModel
	} else {
		return nil, fmt.Errorf("%w: %s", ErrNoProvidersAvailable, originalModel)
	}

	// Try to acquire semaphore
	if err := c.client.semaphore.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer c.client.semaphore.Release(1)

	// Execute request
	result, err := c.client.breaker.Execute(func() (any, error) {
		resp, err := c.client.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return resp, err
		}
		if bl := c.checkBlockReasons(resp, params.Model); bl != nil {
			return resp, bl
		}
		return resp, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState):
			c.client.logger.Error("Circuit breaker is open, rejecting request",
				zap.String("model", params.Model))
			return nil, fmt.Errorf("circuit breaker is open: %w", err)
		case errors.Is(err, ErrContentBlocked):
			return nil, err
		default:
			c.client.logger.Warn("Failed to make request", zap.Error(err))
			return nil, err
		}
	}

	return result.(*openai.ChatCompletion), nil
}

// NewStreaming creates a streaming chat completion request.
func (c *chatCompletions) NewStreaming(
	ctx context.Context, params openai.ChatCompletionNewParams,
) *ssestream.Stream[openai.ChatCompletionChunk] {
	// Map model name
	originalModel := params.Model
	if mappedModel, ok := c.client.modelMappings[originalModel]; ok {
		params.Model = mappedModel
	} else {
		return ssestream.NewStream[openai.ChatCompletionChunk](
			nil, fmt.Errorf("%w: %s", ErrNoProvidersAvailable, originalModel),
		)
	}

	// Try to acquire semaphore
	if err := c.client.semaphore.Acquire(ctx, 1); err != nil {
		return ssestream.NewStream[openai.ChatCompletionChunk](
			nil, fmt.Errorf("failed to acquire semaphore: %w", err),
		)
	}

	// Execute stream creation with circuit breaker
	result, err := c.client.breaker.Execute(func() (any, error) {
		stream := c.client.client.Chat.Completions.NewStreaming(ctx, params)
		if stream.Err() != nil {
			return nil, stream.Err()
		}
		return stream, nil
	})
	if err != nil {
		c.client.semaphore.Release(1)

		if errors.Is(err, gobreaker.ErrOpenState) {
			c.client.logger.Error("Circuit breaker is open, rejecting stream",
				zap.String("model", params.Model))
			return ssestream.NewStream[openai.ChatCompletionChunk](
				nil, fmt.Errorf("circuit breaker is open: %w", err))
		}

		c.client.logger.Warn("Failed to create stream", zap.Error(err))

		return ssestream.NewStream[openai.ChatCompletionChunk](nil, err)
	}

	stream := result.(*ssestream.Stream[openai.ChatCompletionChunk])

	// Set up cleanup when context is done
	go func() {
		<-ctx.Done()
		c.client.semaphore.Release(1)
	}()

	return stream
}

// checkBlockReasons checks if the response was blocked by content filtering.
func (c *chatCompletions) checkBlockReasons(resp *openai.ChatCompletion, model string) error {
	// Check if response is provided
	if resp == nil {
		c.client.logger.Warn("Received nil response", zap.String("model", model))
		return fmt.Errorf("%w: received nil response", ErrContentBlocked)
	}

	// Check if choices are provided
	if len(resp.Choices) == 0 {
		c.client.logger.Warn("Received empty choices", zap.String("model", model))
		return fmt.Errorf("%w: received empty choices", ErrContentBlocked)
	}

	// Check if finish reason is provided
	finishReason := resp.Choices[0].FinishReason
	if finishReason == "" {
		c.client.logger.Warn("No finish reason provided", zap.String("model", model))
		return fmt.Errorf("%w: no finish reason provided", ErrContentBlocked)
	}

	switch finishReason {
	case "stop", "length":
		return nil
	case "content_filter":
		c.client.logger.Warn("Content blocked",
			zap.String("model", model),
			zap.String("finishReason", finishReason))
		return ErrContentBlocked
	default:
		c.client.logger.Warn("Unknown finish reason",
			zap.String("model", model),
			zap.String("finishReason", finishReason))
		return fmt.Errorf("%w: finish reason %q", ErrContentBlocked, finishReason)
	}
}
