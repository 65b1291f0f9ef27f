package badger

import (
	"context"
	"errors"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

const (
	settingsKey = "settings"
	cookiesKey  = "cookies"
)

type settingsRecord struct {
	Key      string `badgerhold:"key"`
	Settings models.Settings
}

type cookieSnapshot struct {
	Key     string `badgerhold:"key"`
	Cookies []models.CookieRecord
}

// Store implements interfaces.Store on top of badgerhold. Settings and the cookie
// snapshot are kept as two independent records.
type Store struct {
	db     *BadgerDB
	logger arbor.ILogger
	mu     sync.Mutex
}

var _ interfaces.Store = (*Store)(nil)

// NewStore creates a Store over an open database
func NewStore(db *BadgerDB, logger arbor.ILogger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

func (s *Store) Load(ctx context.Context) (*models.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var record settingsRecord
	err := s.db.Store().Get(settingsKey, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &interfaces.StorageReadError{Resource: settingsKey, Err: err}
	}

	settings := record.Settings
	return &settings, nil
}

func (s *Store) Save(ctx context.Context, settings models.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := &settingsRecord{Key: settingsKey, Settings: settings}
	if err := s.db.Store().Upsert(settingsKey, record); err != nil {
		return &interfaces.StorageWriteError{Resource: settingsKey, Err: err}
	}

	s.logger.Debug().
		Bool("has_url", settings.URL != "").
		Bool("has_credentials", settings.HasCredentials()).
		Msg("Settings saved")
	return nil
}

func (s *Store) LoadURL(ctx context.Context) (string, error) {
	settings, err := s.Load(ctx)
	if err != nil || settings == nil {
		return "", err
	}
	return settings.URL, nil
}

func (s *Store) SaveURL(ctx context.Context, url string) error {
	return s.Save(ctx, models.Settings{URL: url})
}

func (s *Store) LoadCookies(ctx context.Context) ([]models.CookieRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshot cookieSnapshot
	err := s.db.Store().Get(cookiesKey, &snapshot)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &interfaces.StorageReadError{Resource: cookiesKey, Err: err}
	}

	if snapshot.Cookies == nil {
		return []models.CookieRecord{}, nil
	}
	return snapshot.Cookies, nil
}

func (s *Store) SaveCookies(ctx context.Context, cookies []models.CookieRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := &cookieSnapshot{Key: cookiesKey, Cookies: cookies}
	if err := s.db.Store().Upsert(cookiesKey, snapshot); err != nil {
		return &interfaces.StorageWriteError{Resource: cookiesKey, Err: err}
	}

	s.logger.Debug().Int("count", len(cookies)).Msg("Cookie snapshot saved")
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
