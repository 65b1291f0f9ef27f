package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sessionshell/internal/browser"
	"github.com/ternarybob/sessionshell/internal/common"
	"github.com/ternarybob/sessionshell/internal/handlers"
	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/services/cookies"
	"github.com/ternarybob/sessionshell/internal/services/login"
	"github.com/ternarybob/sessionshell/internal/services/settings"
	"github.com/ternarybob/sessionshell/internal/storage"
)

const (
	// InstructionPath is the first-run page shown while no url is configured
	InstructionPath = "/instruction"
	// SettingsPath is the page loaded into the settings window
	SettingsPath = "/settings"

	pageReadyTimeout = 30 * time.Second
)

// BrowserHost is the browser surface the application drives
type BrowserHost interface {
	interfaces.Navigator
	interfaces.CookieJar
	interfaces.PageInspector
	interfaces.PageActuator
	interfaces.StyleInjector

	Start(ctx context.Context) error
	Close(ctx context.Context) error
	DOMReady() <-chan struct{}
	Commands() <-chan browser.Command
	Closed() <-chan struct{}
	OpenWindow(ctx context.Context, url string) error
}

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger
	Store  interfaces.Store
	Host   BrowserHost

	// Services
	CookieService   *cookies.Service
	Checkpoint      *cookies.Checkpoint
	Orchestrator    *login.Orchestrator
	SettingsService *settings.Service

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	PageHandler     *handlers.PageHandler
	SettingsHandler *handlers.SettingsHandler
	WSHandler       *handlers.WebSocketHandler
}

// New initializes the application with all dependencies. Chrome is not launched
// until Run.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	store, err := storage.NewStore(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	host := browser.New(browserOptions(cfg), logger)

	app, err := NewWithHost(cfg, logger, store, host)
	if err != nil {
		store.Close()
		return nil, err
	}
	return app, nil
}

// NewWithHost wires services and handlers around an existing store and browser host
func NewWithHost(cfg *common.Config, logger arbor.ILogger, store interfaces.Store, host BrowserHost) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Host:   host,
	}

	app.initServices()

	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Debug().
		Str("storage", cfg.Storage.Type).
		Bool("auto_login", cfg.Login.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

func browserOptions(cfg *common.Config) browser.Options {
	return browser.Options{
		ExecPath:       cfg.Browser.ExecPath,
		UserDataDir:    cfg.Browser.UserDataDir,
		Width:          cfg.Browser.WindowWidth,
		Height:         cfg.Browser.WindowHeight,
		Maximized:      cfg.Browser.Maximized,
		DevTools:       cfg.DevToolsEnabled(),
		StartupTimeout: common.ParseDuration(cfg.Browser.StartupTimeout, 30*time.Second),
		ExtraFlags:     cfg.Browser.ExtraFlags,
		Selectors: browser.Selectors{
			Failure:  cfg.Login.FailureSelector,
			Username: cfg.Login.UsernameSelector,
			Password: cfg.Login.PasswordSelector,
			Submit:   cfg.Login.SubmitSelector,
		},
	}
}

func (a *App) initServices() {
	a.CookieService = cookies.NewService(a.Store, a.Host, a.Logger)
	a.Checkpoint = cookies.NewCheckpoint(a.CookieService, a.Logger)

	a.Orchestrator = login.NewOrchestrator(
		a.Store,
		a.Host,
		a.Host,
		a.Host,
		login.Options{
			Enabled:          a.Config.Login.Enabled,
			DisabledLinksCSS: a.Config.Login.DisabledLinksCSS,
			MinInterval:      common.ParseDuration(a.Config.Login.MinInterval, 0),
			Burst:            a.Config.Login.Burst,
		},
		a.Logger,
	)

	a.SettingsService = settings.NewService(a.Store, a.Host, a.URL(InstructionPath), a.Logger)
}

func (a *App) initHandlers() error {
	pageHandler, err := handlers.NewPageHandler(a.Logger)
	if err != nil {
		return fmt.Errorf("failed to load pages: %w", err)
	}

	a.PageHandler = pageHandler
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.SettingsHandler = handlers.NewSettingsHandler(a.SettingsService, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.SettingsService, a.Logger)
	return nil
}

// URL returns an absolute url on the local HTTP server
func (a *App) URL(path string) string {
	return fmt.Sprintf("http://%s:%d%s", a.Config.Server.Host, a.Config.Server.Port, path)
}

// Run launches the browser, restores the previous session and serves main window
// events until the window closes, a quit command arrives or ctx is cancelled. Cookies
// are captured and the browser closed before Run returns.
func (a *App) Run(ctx context.Context) error {
	if err := a.Host.Start(ctx); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}

	if err := a.restoreSession(ctx); err != nil {
		a.shutdown()
		return err
	}

	if err := a.Checkpoint.Start(a.Config.Cookies.CheckpointSchedule); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to start cookie checkpoint")
	}

	workerCtx, stopWorker := context.WithCancel(ctx)
	worker := newPageWorker(a.Orchestrator, a.Logger, pageReadyTimeout)
	common.SafeGo(a.Logger, "pageWorker", func() { worker.Run(workerCtx) })

	a.loop(ctx, worker)

	// No page pass may touch the browser once capture starts
	stopWorker()
	worker.Wait()

	a.shutdown()
	return nil
}

// restoreSession applies stored cookies and then loads the stored url, or the
// instruction page on first run
func (a *App) restoreSession(ctx context.Context) error {
	if _, err := a.CookieService.Restore(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Stored cookies unreadable - starting without session")
	}

	url, err := a.Store.LoadURL(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Stored settings unreadable - showing instructions")
	}
	if url == "" {
		url = a.URL(InstructionPath)
	}

	if err := a.Host.Navigate(ctx, url); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		// The page may be unreachable; the window stays open so settings can be fixed
		a.Logger.Warn().Err(err).Str("url", url).Msg("Initial navigation failed")
	}
	return nil
}

func (a *App) loop(ctx context.Context, worker *pageWorker) {
	for {
		select {
		case <-a.Host.DOMReady():
			worker.Notify()

		case command := <-a.Host.Commands():
			if a.handleCommand(ctx, command) {
				return
			}

		case <-a.Host.Closed():
			a.Logger.Info().Msg("Main window closed")
			return

		case <-ctx.Done():
			a.Logger.Info().Msg("Shutdown requested")
			return
		}
	}
}

// handleCommand runs a command from the main window and reports whether the shell
// should quit
func (a *App) handleCommand(ctx context.Context, command browser.Command) bool {
	a.Logger.Debug().Str("command", string(command)).Msg("Command received")

	switch command {
	case browser.CommandOpenSettings:
		if err := a.Host.OpenWindow(ctx, a.URL(SettingsPath)); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to open settings window")
		}
		return false
	case browser.CommandQuit:
		a.Logger.Info().Msg("Quit requested")
		return true
	default:
		return false
	}
}

// shutdown captures the cookie jar and closes the browser. It runs on its own
// deadline so a cancelled Run context still persists the session.
func (a *App) shutdown() {
	a.Checkpoint.Stop()

	timeout := common.ParseDuration(a.Config.Server.ShutdownTimeout, 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.CookieService.Capture(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("Failed to save session cookies")
	}

	if err := a.Host.Close(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close browser")
	}
}

// Close closes all application resources
func (a *App) Close() error {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}
	return nil
}
