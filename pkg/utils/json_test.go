package utils_test

import (
	"testing"

	"github.com/civicpulse/civicpulse/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare object",
			input:    `{"category":"INFRASTRUCTURE","confidence":0.9}`,
			expected: `{"category":"INFRASTRUCTURE","confidence":0.9}`,
		},
		{
			name:     "object wrapped in prose",
			input:    "Here is the result:\n{\"category\":\"SAFETY\"}\nLet me know if you need more.",
			expected: `{"category":"SAFETY"}`,
		},
		{
			name:     "object inside code fence",
			input:    "```json\n{\"tags\":[\"roads\"]}\n```",
			expected: `{"tags":["roads"]}`,
		},
		{
			name:     "nested objects",
			input:    `before {"outer":{"inner":1}} after`,
			expected: `{"outer":{"inner":1}}`,
		},
		{
			name:     "braces inside strings",
			input:    `{"note":"use {curly} braces"}`,
			expected: `{"note":"use {curly} braces"}`,
		},
		{
			name:     "escaped quote inside string",
			input:    `{"note":"she said \"hi\" {"}`,
			expected: `{"note":"she said \"hi\" {"}`,
		},
		{
			name:     "no object",
			input:    "no json here",
			expected: "",
		},
		{
			name:     "unbalanced object",
			input:    `{"category":"GENERAL"`,
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := utils.ExtractJSONObject(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}
