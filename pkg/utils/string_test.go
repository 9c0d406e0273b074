package utils_test

import (
	"testing"

	"github.com/civicpulse/civicpulse/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestCompressAllWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "multiple spaces",
			input:    "pothole  on   main street",
			expected: "pothole on main street",
		},
		{
			name:     "newlines and tabs",
			input:    "broken\nstreet\tlight",
			expected: "broken street light",
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  flooded underpass  ",
			expected: "flooded underpass",
		},
		{
			name:     "already normalized",
			input:    "graffiti on wall",
			expected: "graffiti on wall",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := utils.CompressAllWhitespace(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "shorter than limit",
			input:    "short",
			maxLen:   10,
			expected: "short",
		},
		{
			name:     "exactly at limit",
			input:    "exact",
			maxLen:   5,
			expected: "exact",
		},
		{
			name:     "truncated with ellipsis",
			input:    "a very long report description",
			maxLen:   10,
			expected: "a very ...",
		},
		{
			name:     "tiny limit",
			input:    "abcdef",
			maxLen:   2,
			expected: "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := utils.TruncateString(tt.input, tt.maxLen)
			assert.Equal(t, tt.expected, got)
		})
	}
}
