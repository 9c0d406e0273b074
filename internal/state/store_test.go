package state_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/civicpulse/civicpulse/internal/state"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupTest(t *testing.T) (rueidis.Client, *miniredis.Miniredis) {
	t.Helper()
	// Start miniredis server
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Create Redis client
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return client, mr
}

func TestStoreGetFallback(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)
	store := state.NewStore(client, "counter", 42, zaptest.NewLogger(t))

	assert.Equal(t, 42, store.Get("never-set"))
}

func TestStoreSetThenGet(t *testing.T) {
	t.Parallel()

	client, mr := setupTest(t)
	store := state.NewStore(client, "counter", 0, zaptest.NewLogger(t))

	ctx := t.Context()
	require.NoError(t, store.Set(ctx, "u1", 7))

	// Getter is synchronous from memory
	assert.Equal(t, 7, store.Get("u1"))

	// Value was persisted under the prefixed key
	assert.Equal(t, "7", mustGet(t, mr, "counter:u1"))
}

func TestStoreLoadSurvivesRestart(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)
	ctx := t.Context()
	logger := zaptest.NewLogger(t)

	first := state.NewStore(client, "counter", 0, logger)
	require.NoError(t, first.Set(ctx, "u1", 99))

	// A fresh store over the same Redis starts cold
	second := state.NewStore(client, "counter", 0, logger)
	assert.Equal(t, 0, second.Get("u1"))

	loaded, err := second.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 99, loaded)
	assert.Equal(t, 99, second.Get("u1"))
}

func TestStoreFetchColdStart(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)
	ctx := t.Context()
	logger := zaptest.NewLogger(t)

	first := state.NewStore(client, "counter", 0, logger)
	require.NoError(t, first.Set(ctx, "u1", 31))

	// A fresh store over the same Redis serves the persisted value
	// without an explicit Load
	second := state.NewStore(client, "counter", 0, logger)
	assert.Equal(t, 31, second.Fetch(ctx, "u1"))

	// The value is mirrored after the first fetch
	assert.Equal(t, 31, second.Get("u1"))

	// Keys that were never set fetch as the fallback
	assert.Equal(t, 0, second.Fetch(ctx, "absent"))
}

func TestSessionOnboardingSurvivesRestart(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)
	ctx := t.Context()
	logger := zaptest.NewLogger(t)

	first := state.NewSessionStore(client, logger)
	require.NoError(t, first.StartOnboarding(ctx, "s1", "sam@example.com"))
	require.NoError(t, first.UpdateOnboarding(ctx, "s1", func(o *types.OnboardingData) {
		o.DisplayName = "Sam"
	}))

	// A fresh store picks up the in-progress wizard from Redis
	second := state.NewSessionStore(client, logger)
	require.NoError(t, second.UpdateOnboarding(ctx, "s1", func(o *types.OnboardingData) {
		o.City = "Springfield"
	}))

	session := second.Fetch(ctx, "s1")
	require.NotNil(t, session.Onboarding)
	assert.Equal(t, "Sam", session.Onboarding.DisplayName)
	assert.Equal(t, "Springfield", session.Onboarding.City)
}

func TestStoreLoadMissingKey(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)
	store := state.NewStore(client, "counter", 13, zaptest.NewLogger(t))

	loaded, err := store.Load(t.Context(), "absent")
	require.NoError(t, err)
	assert.Equal(t, 13, loaded)
}

func TestStoreSubscribe(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)
	store := state.NewStore(client, "counter", 0, zaptest.NewLogger(t))

	var (
		gotKey   string
		gotValue int
		calls    int
	)

	unsubscribe := store.Subscribe(func(key string, value int) {
		gotKey = key
		gotValue = value
		calls++
	})

	ctx := t.Context()
	require.NoError(t, store.Set(ctx, "u1", 5))
	assert.Equal(t, "u1", gotKey)
	assert.Equal(t, 5, gotValue)
	assert.Equal(t, 1, calls)

	unsubscribe()
	require.NoError(t, store.Set(ctx, "u1", 6))
	assert.Equal(t, 1, calls)
}

func TestThemeStore(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)
	store := state.NewThemeStore(client, zaptest.NewLogger(t))
	ctx := t.Context()

	// Default is system
	assert.Equal(t, state.ThemeSystem, store.Get("u1"))

	require.NoError(t, store.Set(ctx, "u1", state.ThemeDark))
	assert.Equal(t, state.ThemeDark, store.Get("u1"))

	// Unknown themes are rejected before persisting
	require.Error(t, store.Set(ctx, "u1", state.Theme("sepia")))
	assert.Equal(t, state.ThemeDark, store.Get("u1"))
}

func TestLanguageStore(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)
	store := state.NewLanguageStore(client, zaptest.NewLogger(t))
	ctx := t.Context()

	assert.Equal(t, state.DefaultLanguage, store.Get("u1"))

	require.NoError(t, store.Set(ctx, "u1", "es"))
	assert.Equal(t, "es", store.Get("u1"))

	require.Error(t, store.Set(ctx, "u1", "tlh"))
	assert.Equal(t, "es", store.Get("u1"))
}

func TestSessionOnboardingFlow(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)
	store := state.NewSessionStore(client, zaptest.NewLogger(t))
	ctx := t.Context()

	require.NoError(t, store.StartOnboarding(ctx, "s1", "sam@example.com"))

	require.NoError(t, store.UpdateOnboarding(ctx, "s1", func(o *types.OnboardingData) {
		o.DisplayName = "Sam"
		o.City = "Springfield"
	}))
	require.NoError(t, store.UpdateOnboarding(ctx, "s1", func(o *types.OnboardingData) {
		o.Persona = enum.PersonaResident
		o.Interests = []string{"parks"}
	}))

	userID := uuid.New()

	data, err := store.CompleteOnboarding(ctx, "s1", userID)
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", data.Email)
	assert.Equal(t, "Sam", data.DisplayName)
	assert.Equal(t, enum.PersonaResident, data.Persona)

	// Accumulator is discarded, session is authenticated
	session := store.Get("s1")
	assert.Nil(t, session.Onboarding)
	assert.True(t, session.Authenticated)
	assert.Equal(t, userID, session.UserID)

	// Completing twice fails
	_, err = store.CompleteOnboarding(ctx, "s1", userID)
	assert.ErrorIs(t, err, state.ErrNotOnboarding)
}

func TestSessionSignInSignOut(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)
	store := state.NewSessionStore(client, zaptest.NewLogger(t))
	ctx := t.Context()

	userID := uuid.New()
	require.NoError(t, store.SignIn(ctx, "s1", userID, "sam@example.com"))
	assert.True(t, store.Get("s1").Authenticated)

	require.NoError(t, store.SignOut(ctx, "s1"))
	assert.False(t, store.Get("s1").Authenticated)
}

func TestUpdateOnboardingWithoutStart(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)
	store := state.NewSessionStore(client, zaptest.NewLogger(t))

	err := store.UpdateOnboarding(t.Context(), "s1", func(*types.OnboardingData) {})
	assert.ErrorIs(t, err, state.ErrNotOnboarding)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()

	v, err := mr.Get(key)
	require.NoError(t, err)

	return v
}
