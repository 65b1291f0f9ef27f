package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// Command is a shell action requested from the main window
type Command string

const (
	CommandOpenSettings Command = "open-settings"
	CommandQuit         Command = "quit"
)

// commandBinding is exposed to every document loaded in the main window
const commandBinding = "sessionShellCommand"

// Ctrl/Cmd+Shift+U opens the settings window, Ctrl/Cmd+Q quits
const acceleratorScript = `window.addEventListener('keydown', function (e) {
	if (!(e.ctrlKey || e.metaKey)) {
		return;
	}
	var key = (e.key || '').toLowerCase();
	var command = '';
	if (e.shiftKey && key === 'u') {
		command = 'open-settings';
	} else if (!e.shiftKey && key === 'q') {
		command = 'quit';
	}
	if (command && typeof window.sessionShellCommand === 'function') {
		e.preventDefault();
		e.stopPropagation();
		window.sessionShellCommand(command);
	}
}, true);`

func (h *Host) installCommandSurface() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := runtime.AddBinding(commandBinding).Do(ctx); err != nil {
			return fmt.Errorf("failed to add command binding: %w", err)
		}
		if _, err := page.AddScriptToEvaluateOnNewDocument(acceleratorScript).Do(ctx); err != nil {
			return fmt.Errorf("failed to install accelerators: %w", err)
		}
		return nil
	})
}

func (h *Host) onCommandEvent(ev any) {
	e, ok := ev.(*runtime.EventBindingCalled)
	if !ok || e.Name != commandBinding {
		return
	}

	command := Command(e.Payload)
	switch command {
	case CommandOpenSettings, CommandQuit:
	default:
		h.logger.Debug().Str("payload", e.Payload).Msg("Ignoring unknown shell command")
		return
	}

	select {
	case h.commands <- command:
	default:
		h.logger.Warn().Str("command", string(command)).Msg("Command queue full, dropping command")
	}
}

// OpenWindow shows url in a separate window. While that window is open, further
// calls bring it to the front instead of opening another one.
func (h *Host) OpenWindow(ctx context.Context, url string) error {
	bctx, err := h.browserExecutor(ctx)
	if err != nil {
		return err
	}

	// CDP calls are made without h.mu held; the browser event loop takes it
	h.openMu.Lock()
	defer h.openMu.Unlock()

	h.mu.Lock()
	existing := h.settingsTarget
	h.mu.Unlock()

	if existing != "" {
		if err := target.ActivateTarget(existing).Do(bctx); err == nil {
			return nil
		}
	}

	id, err := target.CreateTarget(url).WithNewWindow(true).WithWidth(420).WithHeight(420).Do(bctx)
	if err != nil {
		return fmt.Errorf("failed to open window: %w", err)
	}

	h.mu.Lock()
	h.settingsTarget = id
	h.mu.Unlock()

	h.logger.Debug().Str("url", url).Str("target", string(id)).Msg("Settings window opened")
	return nil
}
