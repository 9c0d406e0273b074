package types_test

import (
	"testing"

	"github.com/civicpulse/civicpulse/internal/rest/types"
	"github.com/stretchr/testify/assert"
)

func TestAuthMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		code     string
		language string
		want     string
	}{
		{
			name:     "known code and language",
			code:     types.AuthCodeWrongPassword,
			language: "es",
			want:     "Contraseña incorrecta. Inténtalo de nuevo.",
		},
		{
			name:     "known code falls back to english",
			code:     types.AuthCodeUserNotFound,
			language: "ja",
			want:     "No account found for that email.",
		},
		{
			name:     "unknown code uses generic message",
			code:     "session-expired",
			language: "fr",
			want:     "Une erreur est survenue. Veuillez réessayer.",
		},
		{
			name:     "unknown code and language",
			code:     "session-expired",
			language: "ja",
			want:     "Something went wrong. Please try again.",
		},
		{
			name:     "too many requests localized",
			code:     types.AuthCodeTooManyRequests,
			language: "de",
			want:     "Zu viele Versuche. Bitte warte kurz und versuche es erneut.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, types.AuthMessage(tt.code, tt.language))
		})
	}
}
