package handlers

import (
	"context"
	"sync"

	"github.com/ternarybob/sessionshell/internal/models"
)

// fakeSettingsService keeps settings in memory and records set calls
type fakeSettingsService struct {
	mu          sync.Mutex
	settings    *models.Settings
	loadErr     error
	saveErr     error
	navigateErr error
	navigations []string
}

func (f *fakeSettingsService) GetSettings(ctx context.Context) (*models.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.settings == nil {
		return nil, nil
	}
	copied := *f.settings
	return &copied, nil
}

func (f *fakeSettingsService) GetURL(ctx context.Context) (string, error) {
	stored, err := f.GetSettings(ctx)
	if err != nil || stored == nil {
		return "", err
	}
	return stored.URL, nil
}

func (f *fakeSettingsService) SetSettings(ctx context.Context, settings models.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.settings = &settings
	f.navigations = append(f.navigations, settings.URL)
	return f.navigateErr
}

func (f *fakeSettingsService) SetURL(ctx context.Context, url string) error {
	return f.SetSettings(ctx, models.Settings{URL: url})
}

func (f *fakeSettingsService) navigated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.navigations...)
}
