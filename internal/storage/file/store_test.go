package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/models"
	"github.com/ternarybob/sessionshell/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), arbor.NewLogger())
	require.NoError(t, err)
	return store
}

func TestStoreContract(t *testing.T) {
	storagetest.RunStoreContract(t, func(t *testing.T) interfaces.Store {
		return newTestStore(t)
	})
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewStore(dir, arbor.NewLogger())
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, models.Settings{URL: "https://x/app", Username: "a", Password: "b"}))

	second, err := NewStore(dir, arbor.NewLogger())
	require.NoError(t, err)
	got, err := second.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://x/app", got.URL)

	raw, err := os.ReadFile(filepath.Join(dir, SettingsFileName))
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://x/app","username":"a","password":"b"}`, string(raw))
}

func TestStore_ReadsOriginalFileLayout(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cookies := `[{"url":"https://x/","name":"sid","value":"v","domain":"x","hostOnly":true,"path":"/","secure":true,"httpOnly":true,"session":false,"expirationDate":1893456000.5,"sameSite":"lax"}]`
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), CookiesFileName), []byte(cookies), 0600))

	got, err := store.LoadCookies(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.CookieRecord{
		URL: "https://x/", Name: "sid", Value: "v", Domain: "x", HostOnly: true, Path: "/",
		Secure: true, HTTPOnly: true, ExpirationDate: 1893456000.5, SameSite: "lax",
	}, got[0])
}

func TestStore_NullContentIsFirstRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), SettingsFileName), []byte("null\n"), 0600))

	settings, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestStore_MalformedContentIsReadError(t *testing.T) {
	ctx := context.Background()

	for _, content := range []string{"", "{", `{"url": 5}`, "not json"} {
		t.Run(fmt.Sprintf("%q", content), func(t *testing.T) {
			store := newTestStore(t)
			require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), SettingsFileName), []byte(content), 0600))
			require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), CookiesFileName), []byte(content), 0600))

			settings, err := store.Load(ctx)
			assert.Nil(t, settings)
			assert.ErrorIs(t, err, interfaces.ErrStorageRead)

			var readErr *interfaces.StorageReadError
			require.True(t, errors.As(err, &readErr))
			assert.Contains(t, readErr.Resource, SettingsFileName)

			_, err = store.LoadURL(ctx)
			assert.ErrorIs(t, err, interfaces.ErrStorageRead)

			_, err = store.LoadCookies(ctx)
			assert.ErrorIs(t, err, interfaces.ErrStorageRead)
		})
	}
}

func TestStore_WriteFailureIsWriteError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// A directory in place of the settings file makes the final rename fail
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir(), SettingsFileName), 0700))

	err := store.Save(ctx, models.Settings{URL: "https://x/"})
	assert.ErrorIs(t, err, interfaces.ErrStorageWrite)
	assert.NotErrorIs(t, err, interfaces.ErrStorageRead)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp", "temp files are cleaned up")
	}
}

func TestStore_EmptyCookieSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveCookies(ctx, nil))

	raw, err := os.ReadFile(filepath.Join(store.Dir(), CookiesFileName))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	got, err := store.LoadCookies(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Save(ctx, models.Settings{URL: fmt.Sprintf("https://x/%d", i)}))
		}(i)
	}
	wg.Wait()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Regexp(t, `^https://x/\d+$`, got.URL)
}

func TestNewStore_RequiresDir(t *testing.T) {
	_, err := NewStore("", arbor.NewLogger())
	assert.Error(t, err)
}
