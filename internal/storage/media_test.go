package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		data        []byte
		contentType string
		expectedExt string
		expectedErr error
	}{
		{
			name:        "jpeg upload",
			data:        []byte("fake image bytes"),
			contentType: "image/jpeg",
			expectedExt: "jpg",
		},
		{
			name:        "png upload",
			data:        []byte("fake image bytes"),
			contentType: "image/png",
			expectedExt: "png",
		},
		{
			name:        "empty upload",
			data:        nil,
			contentType: "image/jpeg",
			expectedErr: ErrEmptyUpload,
		},
		{
			name:        "oversized upload",
			data:        make([]byte, MaxUploadSize+1),
			contentType: "image/jpeg",
			expectedErr: ErrUploadTooLarge,
		},
		{
			name:        "unsupported format",
			data:        []byte("%PDF-1.4"),
			contentType: "application/pdf",
			expectedErr: ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ext, err := validateUpload(tt.data, tt.contentType)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedExt, ext)
		})
	}
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain path", input: "springfield/downtown", expected: "springfield/downtown"},
		{name: "surrounding slashes", input: "/springfield/", expected: "springfield"},
		{name: "traversal stripped", input: "../../etc", expected: "etc"},
		{name: "empty path", input: "", expected: "misc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}

func TestRandomSuffix(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})

	for range 100 {
		s := randomSuffix()
		assert.Len(t, s, 8)
		assert.False(t, strings.ContainsAny(s, "/ "))

		seen[s] = struct{}{}
	}

	// Collisions in 100 draws of 32 random bits would be extraordinary.
	assert.Greater(t, len(seen), 95)
}
