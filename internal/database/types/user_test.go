package types_test

import (
	"testing"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		stats          types.UserStats
		delta          int
		expectedPoints int
		expectedLevel  enum.UserLevel
		promoted       bool
	}{
		{
			name:           "positive delta below threshold",
			stats:          types.UserStats{Points: 10, Level: enum.UserLevelBronze},
			delta:          5,
			expectedPoints: 15,
			expectedLevel:  enum.UserLevelBronze,
		},
		{
			name:           "exact threshold promotes and resets",
			stats:          types.UserStats{Points: 98, Level: enum.UserLevelBronze},
			delta:          2,
			expectedPoints: 0,
			expectedLevel:  enum.UserLevelSilver,
			promoted:       true,
		},
		{
			name:           "past threshold promotes exactly one tier",
			stats:          types.UserStats{Points: 90, Level: enum.UserLevelBronze},
			delta:          500,
			expectedPoints: 0,
			expectedLevel:  enum.UserLevelSilver,
			promoted:       true,
		},
		{
			name:           "silver threshold",
			stats:          types.UserStats{Points: 195, Level: enum.UserLevelSilver},
			delta:          10,
			expectedPoints: 0,
			expectedLevel:  enum.UserLevelGold,
			promoted:       true,
		},
		{
			name:           "negative delta floors at zero",
			stats:          types.UserStats{Points: 4, Level: enum.UserLevelBronze},
			delta:          -10,
			expectedPoints: 0,
			expectedLevel:  enum.UserLevelBronze,
		},
		{
			name:           "diamond is terminal",
			stats:          types.UserStats{Points: 480, Level: enum.UserLevelDiamond},
			delta:          100,
			expectedPoints: 580,
			expectedLevel:  enum.UserLevelDiamond,
		},
		{
			name:           "zero delta is a no-op",
			stats:          types.UserStats{Points: 50, Level: enum.UserLevelGold},
			delta:          0,
			expectedPoints: 50,
			expectedLevel:  enum.UserLevelGold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next, promoted := tt.stats.ApplyDelta(tt.delta)
			assert.Equal(t, tt.expectedPoints, next.Points)
			assert.Equal(t, tt.expectedLevel, next.Level)
			assert.Equal(t, tt.promoted, promoted)

			// Post-conditions that hold for every call
			assert.GreaterOrEqual(t, next.Points, 0)

			if threshold, hasSuccessor := next.Level.Threshold(); hasSuccessor {
				assert.Less(t, next.Points, threshold)
			}
		})
	}
}

func TestLevelThresholds(t *testing.T) {
	t.Parallel()

	// Promotion chain from bronze with repeated threshold-sized deltas
	stats := types.UserStats{Level: enum.UserLevelBronze}

	for _, expected := range []enum.UserLevel{
		enum.UserLevelSilver, enum.UserLevelGold, enum.UserLevelDiamond,
	} {
		threshold, hasSuccessor := stats.Level.Threshold()
		require.True(t, hasSuccessor)

		var promoted bool
		stats, promoted = stats.ApplyDelta(threshold)
		require.True(t, promoted)
		assert.Equal(t, expected, stats.Level)
		assert.Zero(t, stats.Points)
	}

	_, hasSuccessor := stats.Level.Threshold()
	assert.False(t, hasSuccessor)
}

func TestOnboardingValidate(t *testing.T) {
	t.Parallel()

	valid := types.OnboardingData{
		Email:       "sam@example.com",
		DisplayName: "Sam",
		City:        "Springfield",
		Persona:     enum.PersonaResident,
	}

	require.NoError(t, valid.Validate())

	missingEmail := valid
	missingEmail.Email = ""
	assert.ErrorIs(t, missingEmail.Validate(), types.ErrOnboardingPartial)

	badPersona := valid
	badPersona.Persona = "tourist"
	assert.ErrorIs(t, badPersona.Validate(), types.ErrInvalidPersona)
}

func TestOnboardingToUser(t *testing.T) {
	t.Parallel()

	data := types.OnboardingData{
		Email:       "sam@example.com",
		DisplayName: "Sam",
		City:        "Springfield",
		District:    "Downtown",
		Interests:   []string{"parks", "cycling"},
		Persona:     enum.PersonaCommuter,
	}

	now := time.Now()
	user := data.ToUser(now)

	assert.NotEqual(t, user.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, data.Email, user.Email)
	assert.Equal(t, data.Interests, user.Interests)
	assert.Equal(t, now, user.CreatedAt)

	// New users start at bronze with zeroed stats
	assert.Equal(t, enum.UserLevelBronze, user.Stats.Level)
	assert.Zero(t, user.Stats.Points)
	assert.Zero(t, user.Stats.Reports)
}
