package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// ErrNotStarted is returned by every operation before Start succeeds
var ErrNotStarted = errors.New("browser not started")

// Selectors locate the remote application's login form
type Selectors struct {
	Failure  string
	Username string
	Password string
	Submit   string
}

// Options configures the Chrome instance
type Options struct {
	ExecPath       string
	UserDataDir    string // Empty = temporary profile removed on exit
	Width          int
	Height         int
	Maximized      bool
	DevTools       bool
	Headless       bool // Used by tests; the shell always runs with a visible window
	StartupTimeout time.Duration
	ExtraFlags     []string
	Selectors      Selectors
}

// Host runs Chrome and exposes the main window as the primitives the shell needs:
// navigation, page scripts, style injection, the cookie jar and lifecycle events.
type Host struct {
	options Options
	logger  arbor.ILogger

	allocCancel context.CancelFunc
	mainCtx     context.Context
	mainCancel  context.CancelFunc
	mainTarget  target.ID

	domReady  chan struct{}
	commands  chan Command
	closed    chan struct{}
	closeOnce sync.Once
	stopOnce  sync.Once

	mu             sync.Mutex
	openMu         sync.Mutex
	settingsTarget target.ID
}

// New creates a host. Chrome is not launched until Start.
func New(options Options, logger arbor.ILogger) *Host {
	if options.StartupTimeout <= 0 {
		options.StartupTimeout = 30 * time.Second
	}
	return &Host{
		options:  options,
		logger:   logger,
		domReady: make(chan struct{}, 1),
		commands: make(chan Command, 8),
		closed:   make(chan struct{}),
	}
}

func (h *Host) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", h.options.Headless),
		chromedp.Flag("hide-scrollbars", h.options.Headless),
		chromedp.Flag("mute-audio", h.options.Headless),
		chromedp.Flag("enable-automation", false),
		// Keep the browser process alive after the main window closes so the
		// cookie jar can still be captured.
		chromedp.Flag("keep-alive-for-test", true),
	)

	if h.options.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(h.options.ExecPath))
	}
	if h.options.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(h.options.UserDataDir))
	}
	if h.options.Maximized && !h.options.Headless {
		opts = append(opts, chromedp.Flag("start-maximized", true))
	} else if h.options.Width > 0 && h.options.Height > 0 {
		opts = append(opts, chromedp.WindowSize(h.options.Width, h.options.Height))
	}
	if h.options.DevTools && !h.options.Headless {
		opts = append(opts, chromedp.Flag("auto-open-devtools-for-tabs", true))
	}

	for _, flag := range h.options.ExtraFlags {
		name, value, hasValue := strings.Cut(strings.TrimLeft(flag, "-"), "=")
		if name == "" {
			continue
		}
		if hasValue {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	return opts
}

// Start launches Chrome and attaches to its first tab, which becomes the main window.
// The main window stays on about:blank until the first Navigate.
func (h *Host) Start(ctx context.Context) error {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), h.allocatorOptions()...)
	mainCtx, mainCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			h.logger.Debug().Msgf("chromedp: "+format, args...)
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			h.logger.Debug().Msgf("chromedp error: "+format, args...)
		}),
	)

	h.allocCancel = allocCancel
	h.mainCtx = mainCtx
	h.mainCancel = mainCancel

	chromedp.ListenTarget(mainCtx, h.onTargetEvent)
	chromedp.ListenBrowser(mainCtx, h.onBrowserEvent)

	// The first Run allocates the browser and ties its lifetime to mainCtx, so it
	// must not run on a derived context.
	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(mainCtx, h.installCommandSurface())
	}()

	select {
	case err := <-started:
		if err != nil {
			h.abort()
			return fmt.Errorf("failed to start browser: %w", err)
		}
	case <-time.After(h.options.StartupTimeout):
		h.abort()
		return fmt.Errorf("browser did not start within %s", h.options.StartupTimeout)
	case <-ctx.Done():
		h.abort()
		return ctx.Err()
	}

	c := chromedp.FromContext(mainCtx)
	h.mu.Lock()
	h.mainTarget = c.Target.TargetID
	h.mu.Unlock()

	go func() {
		select {
		case <-c.Browser.LostConnection:
			h.markClosed("browser connection lost")
		case <-mainCtx.Done():
			h.markClosed("browser context cancelled")
		case <-h.closed:
		}
	}()

	h.logger.Info().
		Str("target", string(h.mainTarget)).
		Bool("devtools", h.options.DevTools).
		Msg("Browser started")

	return nil
}

// DOMReady delivers a signal for every document loaded in the main window.
// Loads that arrive while a previous signal is unread are coalesced.
func (h *Host) DOMReady() <-chan struct{} {
	return h.domReady
}

// Commands delivers shell commands raised from the main window
func (h *Host) Commands() <-chan Command {
	return h.commands
}

// Closed is closed once the main window has gone away
func (h *Host) Closed() <-chan struct{} {
	return h.closed
}

// Close shuts the browser down gracefully, waiting at most until ctx is done.
// Calls after the first are no-ops.
func (h *Host) Close(ctx context.Context) error {
	if h.mainCtx == nil {
		return nil
	}

	var err error
	h.stopOnce.Do(func() {
		h.markClosed("shutdown")

		closeCtx, cancel := context.WithCancel(h.mainCtx)
		defer cancel()
		stop := context.AfterFunc(ctx, cancel)
		defer stop()

		err = chromedp.Cancel(closeCtx)
		h.shutdown()

		if err != nil && !errors.Is(err, context.Canceled) {
			err = fmt.Errorf("failed to close browser: %w", err)
			return
		}
		err = nil
		h.logger.Info().Msg("Browser closed")
	})
	return err
}

func (h *Host) abort() {
	h.stopOnce.Do(func() {
		h.markClosed("startup failed")
		h.shutdown()
	})
}

func (h *Host) shutdown() {
	if h.mainCancel != nil {
		h.mainCancel()
	}
	if h.allocCancel != nil {
		h.allocCancel()
	}
}

func (h *Host) markClosed(reason string) {
	h.closeOnce.Do(func() {
		h.logger.Debug().Str("reason", reason).Msg("Main window closed")
		close(h.closed)
	})
}

// onTargetEvent runs synchronously on the main target's event loop and must not block
func (h *Host) onTargetEvent(ev any) {
	switch e := ev.(type) {
	case *page.EventDomContentEventFired:
		select {
		case h.domReady <- struct{}{}:
		default:
		}
	default:
		h.onCommandEvent(e)
	}
}

// onBrowserEvent runs synchronously on the browser's event loop and must not block
func (h *Host) onBrowserEvent(ev any) {
	e, ok := ev.(*target.EventTargetDestroyed)
	if !ok {
		return
	}

	h.mu.Lock()
	isMain := h.mainTarget != "" && e.TargetID == h.mainTarget
	if e.TargetID == h.settingsTarget {
		h.settingsTarget = ""
	}
	h.mu.Unlock()

	if isMain {
		h.markClosed("main target destroyed")
	}
}

// run executes actions on the main window. ctx bounds the call; the chromedp
// context supplies the target.
func (h *Host) run(ctx context.Context, actions ...chromedp.Action) error {
	if h.mainCtx == nil {
		return ErrNotStarted
	}
	select {
	case <-h.closed:
		return fmt.Errorf("main window closed")
	default:
	}

	runCtx, cancel := context.WithCancel(h.mainCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// browserExecutor returns ctx bound to the browser-level CDP session, which
// outlives the main window
func (h *Host) browserExecutor(ctx context.Context) (context.Context, error) {
	if h.mainCtx == nil {
		return nil, ErrNotStarted
	}
	c := chromedp.FromContext(h.mainCtx)
	if c == nil || c.Browser == nil {
		return nil, ErrNotStarted
	}
	return cdp.WithExecutor(ctx, c.Browser), nil
}
