package cookies

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Checkpoint periodically captures the cookie jar so a crash loses at most one
// interval of session state
type Checkpoint struct {
	service *Service
	cron    *cron.Cron
	logger  arbor.ILogger
	timeout time.Duration
}

// NewCheckpoint creates a new cookie checkpoint scheduler
func NewCheckpoint(service *Service, logger arbor.ILogger) *Checkpoint {
	return &Checkpoint{
		service: service,
		cron:    cron.New(),
		logger:  logger,
		timeout: 30 * time.Second,
	}
}

// Start begins periodic capture. An empty schedule leaves the checkpoint disabled.
func (c *Checkpoint) Start(schedule string) error {
	if schedule == "" {
		c.logger.Debug().Msg("Cookie checkpoint disabled")
		return nil
	}

	if _, err := c.cron.AddFunc(schedule, c.run); err != nil {
		return err
	}

	c.cron.Start()
	c.logger.Info().Str("schedule", schedule).Msg("Cookie checkpoint started")
	return nil
}

// Stop stops the scheduler and waits for a running capture to finish
func (c *Checkpoint) Stop() {
	<-c.cron.Stop().Done()
	c.logger.Debug().Msg("Cookie checkpoint stopped")
}

func (c *Checkpoint) run() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.service.Capture(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Cookie checkpoint failed")
	}
}
