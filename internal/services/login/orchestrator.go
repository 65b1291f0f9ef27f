package login

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/models"
)

// Action is what the orchestrator did with the loaded page
type Action string

const (
	ActionSubmitted      Action = "submitted"
	ActionLoginFailed    Action = "login_failed"     // Failure indicator visible, left as rendered
	ActionNoCredentials  Action = "no_credentials"   // Nothing stored to submit
	ActionUnavailable    Action = "page_unavailable" // Expected elements absent
	ActionThrottled      Action = "throttled"
	ActionDisabled       Action = "disabled"
	ActionSettingsFailed Action = "settings_unreadable"
)

// Result describes one OnPageReady pass
type Result struct {
	State       models.PageLoginState
	Action      Action
	StyleActive bool
	RetryAfter  time.Duration // Set when throttled: the page should be handled again after this delay
}

// Options configures the orchestrator
type Options struct {
	Enabled          bool
	DisabledLinksCSS string
	MinInterval      time.Duration // Minimum spacing between submissions, 0 = unlimited
	Burst            int
}

// Orchestrator re-authenticates the main window after every document load
type Orchestrator struct {
	settings  interfaces.SettingsStore
	inspector interfaces.PageInspector
	actuator  interfaces.PageActuator
	styles    interfaces.StyleInjector
	limiter   *rate.Limiter
	options   Options
	logger    arbor.ILogger
}

// NewOrchestrator creates a new login orchestrator
func NewOrchestrator(
	settings interfaces.SettingsStore,
	inspector interfaces.PageInspector,
	actuator interfaces.PageActuator,
	styles interfaces.StyleInjector,
	options Options,
	logger arbor.ILogger,
) *Orchestrator {
	limit := rate.Inf
	if options.MinInterval > 0 {
		limit = rate.Every(options.MinInterval)
	}
	burst := options.Burst
	if burst < 1 {
		burst = 1
	}

	return &Orchestrator{
		settings:  settings,
		inspector: inspector,
		actuator:  actuator,
		styles:    styles,
		limiter:   rate.NewLimiter(limit, burst),
		options:   options,
		logger:    logger,
	}
}

// OnPageReady runs on every DOM-ready event of the main window. It never fails:
// missing elements mean there is nothing to do, other errors are logged.
func (o *Orchestrator) OnPageReady(ctx context.Context) *Result {
	result := &Result{State: models.NotLoginFailed}

	var wg sync.WaitGroup
	if o.options.DisabledLinksCSS != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result.StyleActive = o.applyStyle(ctx)
		}()
	}

	state, action, retryAfter := o.authenticate(ctx)
	wg.Wait()

	result.State = state
	result.Action = action
	result.RetryAfter = retryAfter
	return result
}

func (o *Orchestrator) applyStyle(ctx context.Context) bool {
	if err := o.styles.InsertCSS(ctx, o.options.DisabledLinksCSS); err != nil {
		o.logDegraded(err, "Failed to insert link style")
		return false
	}
	return true
}

// authenticate submits stored credentials when the page shows a login form and no
// failure indicator. A limiter token is only spent on an actual submission.
func (o *Orchestrator) authenticate(ctx context.Context) (models.PageLoginState, Action, time.Duration) {
	if !o.options.Enabled {
		return models.NotLoginFailed, ActionDisabled, 0
	}

	state, err := o.inspector.Classify(ctx)
	if err != nil {
		o.logDegraded(err, "Could not classify page")
		return models.NotLoginFailed, ActionUnavailable, 0
	}

	if state == models.LoginFailed {
		o.logger.Info().Msg("Login failure indicator visible - skipping auto-login")
		return state, ActionLoginFailed, 0
	}

	settings, err := o.settings.Load(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Msg("Could not read stored settings - skipping auto-login")
		return state, ActionSettingsFailed, 0
	}
	if !settings.HasCredentials() {
		o.logger.Debug().Msg("No stored credentials - skipping auto-login")
		return state, ActionNoCredentials, 0
	}

	present, err := o.inspector.LoginFormPresent(ctx)
	if err != nil {
		o.logDegraded(err, "Could not look for login form")
		return state, ActionUnavailable, 0
	}
	if !present {
		o.logger.Debug().Msg("No login form on page")
		return state, ActionUnavailable, 0
	}

	reservation := o.limiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		// Not acting now; hand the token back so the retry can take it
		reservation.Cancel()
		o.logger.Warn().
			Dur("retry_after", delay).
			Msg("Auto-login throttled - the login page keeps reloading without a failure indicator")
		return state, ActionThrottled, delay
	}

	if err := o.actuator.FillAndSubmit(ctx, settings.Credentials()); err != nil {
		o.logDegraded(err, "Could not submit login form")
		return state, ActionUnavailable, 0
	}

	o.logger.Info().Str("username", settings.Username).Msg("Submitted stored credentials")
	return state, ActionSubmitted, 0
}

// logDegraded logs absent page elements at debug level and anything else as a warning
func (o *Orchestrator) logDegraded(err error, msg string) {
	if errors.Is(err, interfaces.ErrPageStateUnavailable) {
		o.logger.Debug().Err(err).Msg(msg)
		return
	}
	o.logger.Warn().Err(err).Msg(msg)
}
