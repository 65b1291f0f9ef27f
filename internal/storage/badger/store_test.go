package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sessionshell/internal/common"
	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/models"
	"github.com/ternarybob/sessionshell/internal/storage/storagetest"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: path})
	require.NoError(t, err)
	return NewStore(db, logger)
}

func TestStoreContract(t *testing.T) {
	storagetest.RunStoreContract(t, func(t *testing.T) interfaces.Store {
		store := openTestStore(t, filepath.Join(t.TempDir(), "db"))
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db")

	store := openTestStore(t, path)
	require.NoError(t, store.Save(ctx, models.Settings{URL: "https://x/app", Username: "a", Password: "b"}))
	require.NoError(t, store.SaveCookies(ctx, []models.CookieRecord{{URL: "https://x/", Name: "sid", Value: "v"}}))
	require.NoError(t, store.Close())

	reopened := openTestStore(t, path)
	defer reopened.Close()

	settings, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, models.Settings{URL: "https://x/app", Username: "a", Password: "b"}, *settings)

	cookies, err := reopened.LoadCookies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.CookieRecord{{URL: "https://x/", Name: "sid", Value: "v"}}, cookies)
}

func TestNewBadgerDB_ResetOnStartup(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db")

	store := openTestStore(t, path)
	require.NoError(t, store.SaveURL(ctx, "https://x/app"))
	require.NoError(t, store.Close())

	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: path, ResetOnStartup: true})
	require.NoError(t, err)
	reset := NewStore(db, logger)
	defer reset.Close()

	url, err := reset.LoadURL(ctx)
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestNewBadgerDB_RequiresPath(t *testing.T) {
	_, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{})
	assert.Error(t, err)
}
