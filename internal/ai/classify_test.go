package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/civicpulse/civicpulse/internal/ai"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

// fakeChat returns a canned response or error for every completion request.
type fakeChat struct {
	content string
	err     error
}

func (f *fakeChat) New(_ context.Context, _ openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	if f.err != nil {
		return nil, f.err
	}

	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{
				FinishReason: "stop",
				Message: openai.ChatCompletionMessage{
					Content: f.content,
				},
			},
		},
	}, nil
}

func (f *fakeChat) NewStreaming(
	_ context.Context, _ openai.ChatCompletionNewParams,
) *ssestream.Stream[openai.ChatCompletionChunk] {
	return ssestream.NewStream[openai.ChatCompletionChunk](nil, errors.New("streaming not supported in fake"))
}

func testPost() *types.Post {
	return &types.Post{
		ID:      uuid.New(),
		Content: "Huge pothole on Elm Street, two cars damaged already",
		City:    "Springfield",
		Type:    enum.PostTypeReport,
	}
}

func TestClassifyPost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		chat     *fakeChat
		expected types.Classification
	}{
		{
			name: "valid response",
			chat: &fakeChat{content: `{"category":"INFRASTRUCTURE","confidence":0.92,` +
				`"severity":"high","tags":["roads"],"keywords":["pothole","elm street"],"sentiment":"negative"}`},
			expected: types.Classification{
				Category:   "INFRASTRUCTURE",
				Confidence: 0.92,
				Severity:   enum.SeverityHigh,
				Tags:       []string{"roads"},
				Keywords:   []string{"pothole", "elm street"},
				Sentiment:  "negative",
			},
		},
		{
			name: "json wrapped in prose",
			chat: &fakeChat{content: "Here is the classification:\n" +
				`{"category":"SAFETY","confidence":0.7,"severity":"","tags":[],"keywords":[],"sentiment":"neutral"}` +
				"\nHope that helps!"},
			expected: types.Classification{
				Category:   "SAFETY",
				Confidence: 0.7,
				Tags:       []string{},
				Keywords:   []string{},
				Sentiment:  "neutral",
			},
		},
		{
			name:     "api error falls back to default",
			chat:     &fakeChat{err: errors.New("connection refused")},
			expected: types.DefaultClassification(),
		},
		{
			name:     "malformed json falls back to default",
			chat:     &fakeChat{content: "I could not classify this post."},
			expected: types.DefaultClassification(),
		},
		{
			name:     "unknown category falls back to default",
			chat:     &fakeChat{content: `{"category":"WEATHER","confidence":0.8,"severity":"","tags":[],"keywords":[],"sentiment":""}`},
			expected: types.DefaultClassification(),
		},
		{
			name:     "confidence out of range falls back to default",
			chat:     &fakeChat{content: `{"category":"GENERAL","confidence":1.4,"severity":"","tags":[],"keywords":[],"sentiment":""}`},
			expected: types.DefaultClassification(),
		},
		{
			name: "unknown severity is dropped",
			chat: &fakeChat{content: `{"category":"ENVIRONMENT","confidence":0.6,` +
				`"severity":"catastrophic","tags":[],"keywords":[],"sentiment":""}`},
			expected: types.Classification{
				Category:   "ENVIRONMENT",
				Confidence: 0.6,
				Tags:       []string{},
				Keywords:   []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			classifier := ai.NewClassifier(tt.chat, "classifier", zaptest.NewLogger(t))
			got := classifier.ClassifyPost(context.Background(), testPost())
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassifyPostDefaultShape(t *testing.T) {
	t.Parallel()

	classifier := ai.NewClassifier(&fakeChat{err: errors.New("boom")}, "classifier", zaptest.NewLogger(t))
	got := classifier.ClassifyPost(context.Background(), testPost())

	assert.Equal(t, "GENERAL", got.Category)
	assert.InDelta(t, 0.5, got.Confidence, 0.001)
	assert.Empty(t, got.Tags)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Keywords)
	assert.NotNil(t, got.Keywords)
}
