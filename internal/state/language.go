package state

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// DefaultLanguage is used until a user picks one.
const DefaultLanguage = "en"

// supportedLanguages are the locales the app ships translations for.
var supportedLanguages = map[string]struct{}{
	"en": {},
	"es": {},
	"fr": {},
	"de": {},
	"pt": {},
}

// LanguageStore persists each user's language selection.
type LanguageStore struct {
	*Store[string]
}

// NewLanguageStore creates the language store.
func NewLanguageStore(client rueidis.Client, logger *zap.Logger) *LanguageStore {
	return &LanguageStore{
		Store: NewStore(client, "language", DefaultLanguage, logger),
	}
}

// Set validates and persists the language for a user.
func (s *LanguageStore) Set(ctx context.Context, userID, language string) error {
	if _, ok := supportedLanguages[language]; !ok {
		return fmt.Errorf("unsupported language %q", language)
	}

	return s.Store.Set(ctx, userID, language)
}
