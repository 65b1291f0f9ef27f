package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/models"
)

var (
	// ErrInvalidSettings is returned when a set request fails validation. Nothing is persisted.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrNavigation is returned when settings were saved but the main window could not load them
	ErrNavigation = errors.New("navigation failed")
)

// Service answers settings channel requests. Set operations persist first and only
// then navigate the main window, so a failed save never changes what is displayed.
type Service struct {
	store       interfaces.SettingsStore
	navigator   interfaces.Navigator
	fallbackURL string
	validate    *validator.Validate
	logger      arbor.ILogger
	mu          sync.Mutex
}

// NewService creates a settings service. fallbackURL is loaded when saved settings
// carry no url.
func NewService(store interfaces.SettingsStore, navigator interfaces.Navigator, fallbackURL string, logger arbor.ILogger) *Service {
	return &Service{
		store:       store,
		navigator:   navigator,
		fallbackURL: fallbackURL,
		validate:    validator.New(),
		logger:      logger,
	}
}

// GetSettings returns the stored settings, or nil when nothing has been saved
func (s *Service) GetSettings(ctx context.Context) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Load(ctx)
}

// GetURL returns the stored url, or "" when none is stored
func (s *Service) GetURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.LoadURL(ctx)
}

// SetSettings replaces the stored settings and navigates the main window to the new url
func (s *Service) SetSettings(ctx context.Context, settings models.Settings) error {
	if err := s.validate.Struct(settings); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, settings); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save settings - not navigating")
		return err
	}

	s.logger.Info().
		Str("url", settings.URL).
		Bool("has_credentials", settings.HasCredentials()).
		Msg("Settings updated")

	target := settings.URL
	if target == "" {
		target = s.fallbackURL
	}
	return s.navigate(ctx, target)
}

// SetURL stores the url alone, discarding stored credentials, and navigates to it
func (s *Service) SetURL(ctx context.Context, url string) error {
	if err := s.validate.Struct(models.URLPayload{URL: url}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveURL(ctx, url); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save url - not navigating")
		return err
	}

	s.logger.Info().Str("url", url).Msg("URL updated, stored credentials cleared")

	return s.navigate(ctx, url)
}

func (s *Service) navigate(ctx context.Context, url string) error {
	if err := s.navigator.Navigate(ctx, url); err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("Settings saved but navigation failed")
		return fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	return nil
}
