package client

import (
	"testing"
	"time"

	"github.com/civicpulse/civicpulse/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestBreakerSettings(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)

	t.Run("config values are applied", func(t *testing.T) {
		t.Parallel()

		settings := breakerSettings(&config.CircuitBreaker{
			MaxRequests: 3,
			Interval:    30,
			Timeout:     120,
		}, logger)

		assert.Equal(t, uint32(3), settings.MaxRequests)
		assert.Equal(t, 30*time.Second, settings.Interval)
		assert.Equal(t, 120*time.Second, settings.Timeout)
	})

	t.Run("zero config falls back to defaults", func(t *testing.T) {
		t.Parallel()

		settings := breakerSettings(&config.CircuitBreaker{}, logger)

		assert.Equal(t, uint32(1), settings.MaxRequests)
		assert.Zero(t, settings.Interval)
		assert.Equal(t, 60*time.Second, settings.Timeout)
	})
}
