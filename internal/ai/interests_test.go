package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/civicpulse/civicpulse/internal/ai"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestExtractInterests(t *testing.T) {
	t.Parallel()

	answers := []string{"I bike to work every day", "Tired of blocked bike lanes"}

	tests := []struct {
		name     string
		chat     *fakeChat
		answers  []string
		expected ai.InterestProfile
	}{
		{
			name: "valid response",
			chat: &fakeChat{content: `{"interests":["cycling","road safety"],"suggestedTags":["bike-lanes","commute"]}`},
			answers: answers,
			expected: ai.InterestProfile{
				Interests:     []string{"cycling", "road safety"},
				SuggestedTags: []string{"bike-lanes", "commute"},
			},
		},
		{
			name:    "api error falls back to empty profile",
			chat:    &fakeChat{err: errors.New("rate limited")},
			answers: answers,
			expected: ai.InterestProfile{
				Interests:     []string{},
				SuggestedTags: []string{},
			},
		},
		{
			name:    "malformed response falls back to empty profile",
			chat:    &fakeChat{content: "no json here"},
			answers: answers,
			expected: ai.InterestProfile{
				Interests:     []string{},
				SuggestedTags: []string{},
			},
		},
		{
			name:    "no answers skips the model entirely",
			chat:    &fakeChat{err: errors.New("should not be called")},
			answers: nil,
			expected: ai.InterestProfile{
				Interests:     []string{},
				SuggestedTags: []string{},
			},
		},
		{
			name:    "null lists are normalized",
			chat:    &fakeChat{content: `{"interests":null,"suggestedTags":null}`},
			answers: answers,
			expected: ai.InterestProfile{
				Interests:     []string{},
				SuggestedTags: []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			extractor := ai.NewInterestExtractor(tt.chat, "extractor", zaptest.NewLogger(t))
			got := extractor.ExtractInterests(context.Background(), enum.PersonaCommuter, "Springfield", tt.answers)
			assert.Equal(t, tt.expected, got)
		})
	}
}
