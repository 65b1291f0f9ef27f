// Package storagetest holds behaviour checks shared by every durable store backend.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/models"
)

// Factory opens a fresh store. Returning the same directory on reopen must yield
// the previously written state.
type Factory func(t *testing.T) interfaces.Store

// RunStoreContract exercises the behaviour every backend must provide
func RunStoreContract(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("FirstRunIsEmpty", func(t *testing.T) {
		store := newStore(t)

		settings, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, settings)

		url, err := store.LoadURL(ctx)
		require.NoError(t, err)
		assert.Empty(t, url)

		cookies, err := store.LoadCookies(ctx)
		require.NoError(t, err)
		assert.Nil(t, cookies)
	})

	t.Run("SettingsRoundTrip", func(t *testing.T) {
		values := []models.Settings{
			{URL: "https://x/app", Username: "a", Password: "b"},
			{URL: "https://x/app"},
			{Username: "only-user", Password: `p"a';</script>`},
			{},
		}

		store := newStore(t)
		for _, want := range values {
			require.NoError(t, store.Save(ctx, want))

			got, err := store.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, want, *got)

			url, err := store.LoadURL(ctx)
			require.NoError(t, err)
			assert.Equal(t, want.URL, url)
		}
	})

	t.Run("SaveURLDiscardsCredentials", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Save(ctx, models.Settings{URL: "https://x/app", Username: "a", Password: "b"}))
		require.NoError(t, store.SaveURL(ctx, "https://y/app"))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.Settings{URL: "https://y/app"}, *got)
		assert.False(t, got.HasCredentials())
	})

	t.Run("CookiesOverwrite", func(t *testing.T) {
		store := newStore(t)

		first := []models.CookieRecord{
			{URL: "https://x/", Name: "a", Value: "1", Domain: "x", Path: "/", Secure: true},
			{URL: "https://x/", Name: "b", Value: "2", Domain: "x", Path: "/", ExpirationDate: 1893456000},
		}
		second := []models.CookieRecord{
			{URL: "https://y/", Name: "c", Value: "3", Domain: ".y", Path: "/", HTTPOnly: true, SameSite: models.SameSiteLax},
		}

		require.NoError(t, store.SaveCookies(ctx, first))
		got, err := store.LoadCookies(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, got)

		require.NoError(t, store.SaveCookies(ctx, second))
		got, err = store.LoadCookies(ctx)
		require.NoError(t, err)
		assert.Equal(t, second, got, "snapshot is replaced, not merged")
	})

	t.Run("SettingsAndCookiesIndependent", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.SaveCookies(ctx, []models.CookieRecord{{URL: "https://x/", Name: "a"}}))

		settings, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, settings)

		require.NoError(t, store.Save(ctx, models.Settings{URL: "https://x/"}))
		cookies, err := store.LoadCookies(ctx)
		require.NoError(t, err)
		assert.Len(t, cookies, 1)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		store := newStore(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, store.Save(cancelled, models.Settings{URL: "https://x/"}), context.Canceled)

		settings, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, settings, "cancelled save must not write")
	})
}
