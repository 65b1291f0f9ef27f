package handlers

import (
	"context"

	"github.com/ternarybob/sessionshell/internal/models"
)

// SettingsService is the settings channel backend shared by the WebSocket and REST handlers
type SettingsService interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	GetURL(ctx context.Context) (string, error)
	SetSettings(ctx context.Context, settings models.Settings) error
	SetURL(ctx context.Context, url string) error
}
