package cookies

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/models"
)

// RestoreResult summarises one restore pass
type RestoreResult struct {
	Total   int // Records in the stored snapshot
	Applied int
	Skipped int // Records without url or name
	Failed  int // Records rejected by the browser
}

// Service moves the cookie set between the durable store and the browser profile
type Service struct {
	store  interfaces.CookieStore
	jar    interfaces.CookieJar
	logger arbor.ILogger

	captureMu sync.Mutex
}

// NewService creates a new cookie synchronizer
func NewService(store interfaces.CookieStore, jar interfaces.CookieJar, logger arbor.ILogger) *Service {
	return &Service{
		store:  store,
		jar:    jar,
		logger: logger,
	}
}

// Restore applies the stored snapshot to the browser. Every applicable record is set
// concurrently and Restore returns only after all of them have finished. Records
// the browser rejects are logged and skipped. Only a store read failure is returned.
func (s *Service) Restore(ctx context.Context) (*RestoreResult, error) {
	start := time.Now()

	records, err := s.store.LoadCookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cookie snapshot: %w", err)
	}

	result := &RestoreResult{Total: len(records)}
	if len(records) == 0 {
		s.logger.Debug().Msg("No stored cookies to restore")
		return result, nil
	}

	var (
		wg      sync.WaitGroup
		applied int64
		failed  int64
	)

	for _, record := range records {
		if !record.Applicable() {
			result.Skipped++
			continue
		}

		wg.Add(1)
		go func(record models.CookieRecord) {
			defer wg.Done()

			if err := s.jar.SetCookie(ctx, record); err != nil {
				atomic.AddInt64(&failed, 1)
				s.logger.Debug().
					Err(err).
					Str("name", record.Name).
					Str("url", record.URL).
					Msg("Skipping cookie the browser rejected")
				return
			}
			atomic.AddInt64(&applied, 1)
		}(record)
	}

	wg.Wait()

	result.Applied = int(applied)
	result.Failed = int(failed)

	s.logger.Info().
		Int("total", result.Total).
		Int("applied", result.Applied).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Dur("duration", time.Since(start)).
		Msg("Cookies restored")

	return result, nil
}

// Capture reads the complete cookie jar and replaces the stored snapshot with it.
// Records the browser reports without a url get one derived from domain, path and
// the secure flag so they can be applied on the next restore.
func (s *Service) Capture(ctx context.Context) error {
	s.captureMu.Lock()
	defer s.captureMu.Unlock()

	cookies, err := s.jar.Cookies(ctx)
	if err != nil {
		return fmt.Errorf("failed to read browser cookies: %w", err)
	}

	for i := range cookies {
		if cookies[i].URL == "" {
			cookies[i].URL = models.CookieURL(cookies[i].Domain, cookies[i].Path, cookies[i].Secure)
		}
	}

	if err := s.store.SaveCookies(ctx, cookies); err != nil {
		return err
	}

	s.logger.Info().Int("count", len(cookies)).Msg("Cookies captured")
	return nil
}
