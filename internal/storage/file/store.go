package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/models"
)

const (
	SettingsFileName = "settings.json"
	CookiesFileName  = "cookies.json"
)

// Store keeps settings and cookies in two independent JSON files inside dir
type Store struct {
	dir    string
	logger arbor.ILogger
	mu     sync.Mutex
}

var _ interfaces.Store = (*Store)(nil)

// NewStore creates the data directory if needed and returns a file-backed store
func NewStore(dir string, logger arbor.ILogger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	logger.Debug().Str("dir", dir).Msg("File store initialized")

	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the directory holding the store files
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Load(ctx context.Context) (*models.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var settings models.Settings
	found, err := s.readJSON(SettingsFileName, &settings)
	if err != nil || !found {
		return nil, err
	}
	return &settings, nil
}

func (s *Store) Save(ctx context.Context, settings models.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeJSON(SettingsFileName, settings); err != nil {
		return err
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

	var cookies []models.CookieRecord
	if _, err := s.readJSON(CookiesFileName, &cookies); err != nil {
		return nil, err
	}
	return cookies, nil
}

func (s *Store) SaveCookies(ctx context.Context, cookies []models.CookieRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cookies == nil {
		cookies = []models.CookieRecord{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeJSON(CookiesFileName, cookies); err != nil {
		return err
	}

	s.logger.Debug().Int("count", len(cookies)).Msg("Cookie snapshot saved")
	return nil
}

// Close is a no-op; every write is already durable
func (s *Store) Close() error {
	return nil
}

// readJSON decodes the named file into v. A missing file or a literal null is
// reported as not found.
func (s *Store) readJSON(name string, v interface{}) (bool, error) {
	path := filepath.Join(s.dir, name)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &interfaces.StorageReadError{Resource: path, Err: err}
	}

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, &interfaces.StorageReadError{Resource: path, Err: err}
	}
	return true, nil
}

func (s *Store) writeJSON(name string, v interface{}) error {
	path := filepath.Join(s.dir, name)

	data, err := json.Marshal(v)
	if err != nil {
		return &interfaces.StorageWriteError{Resource: path, Err: err}
	}

	if err := writeFileAtomic(path, data, 0600); err != nil {
		return &interfaces.StorageWriteError{Resource: path, Err: err}
	}
	return nil
}
