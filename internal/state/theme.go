package state

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// Theme is the display theme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// IsValid reports whether the theme is one of the known values.
func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}

	return false
}

// ThemeStore persists each user's display theme, defaulting to system.
type ThemeStore struct {
	*Store[Theme]
}

// NewThemeStore creates the theme store.
func NewThemeStore(client rueidis.Client, logger *zap.Logger) *ThemeStore {
	return &ThemeStore{
		Store: NewStore(client, "theme", ThemeSystem, logger),
	}
}

// Set validates and persists the theme for a user.
func (s *ThemeStore) Set(ctx context.Context, userID string, theme Theme) error {
	if !theme.IsValid() {
		return fmt.Errorf("invalid theme %q", theme)
	}

	return s.Store.Set(ctx, userID, theme)
}
