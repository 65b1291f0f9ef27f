package interfaces

import (
	"context"

	"github.com/ternarybob/sessionshell/internal/models"
)

// SettingsStore persists the shell settings.
// Load and LoadURL return (nil, nil) / ("", nil) when nothing has been saved yet.
type SettingsStore interface {
	// Load returns the stored settings, or nil on first run
	Load(ctx context.Context) (*models.Settings, error)

	// Save fully replaces the stored settings
	Save(ctx context.Context, settings models.Settings) error

	// LoadURL returns the stored url, or "" when none is stored
	LoadURL(ctx context.Context) (string, error)

	// SaveURL stores {url} only. Previously stored credentials are discarded.
	SaveURL(ctx context.Context, url string) error
}

// CookieStore persists the cookie snapshot
type CookieStore interface {
	// LoadCookies returns the stored snapshot, or nil when none exists
	LoadCookies(ctx context.Context) ([]models.CookieRecord, error)

	// SaveCookies replaces the stored snapshot
	SaveCookies(ctx context.Context, cookies []models.CookieRecord) error
}

// Store is the durable store for settings and cookies. Every write is durable
// before the call returns.
type Store interface {
	SettingsStore
	CookieStore
	Close() error
}
