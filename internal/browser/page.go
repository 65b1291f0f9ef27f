package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/models"
)

// Page scripts run with `this` bound to the document. Values are passed as call
// arguments and never spliced into the script source.
const (
	classifyScript = `function(selector) {
	const el = this.querySelector(selector);
	return !!el && getComputedStyle(el).display !== 'none';
}`

	formPresentScript = `function(usernameSelector, passwordSelector, submitSelector) {
	return !!this.querySelector(usernameSelector) &&
		!!this.querySelector(passwordSelector) &&
		!!this.querySelector(submitSelector);
}`

	fillAndSubmitScript = `function(usernameSelector, passwordSelector, submitSelector, username, password) {
	const user = this.querySelector(usernameSelector);
	const pass = this.querySelector(passwordSelector);
	const submit = this.querySelector(submitSelector);
	if (!user || !pass || !submit) {
		return false;
	}
	const setValue = (el, value) => {
		el.value = value;
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
	};
	setValue(user, username);
	setValue(pass, password);
	submit.click();
	return true;
}`

	insertCSSScript = `function(id, css) {
	let style = this.getElementById(id);
	if (!style) {
		style = this.createElement('style');
		style.id = id;
		(this.head || this.documentElement).appendChild(style);
	}
	style.textContent = css;
	return true;
}`

	injectedStyleID = "sessionshell-injected-style"
)

// Navigate loads url into the main window. It returns once the navigation has
// been committed, without waiting for the document to finish loading.
func (h *Host) Navigate(ctx context.Context, url string) error {
	err := h.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, errorText, _, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return errors.New(errorText)
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	h.logger.Debug().Str("url", url).Msg("Main window navigated")
	return nil
}

// Classify reports whether the login failure indicator is present and rendered
func (h *Host) Classify(ctx context.Context) (models.PageLoginState, error) {
	var failed bool
	if err := h.callOnDocument(ctx, classifyScript, &failed, h.options.Selectors.Failure); err != nil {
		return models.NotLoginFailed, err
	}
	if failed {
		return models.LoginFailed, nil
	}
	return models.NotLoginFailed, nil
}

// LoginFormPresent reports whether all three login form controls are in the document
func (h *Host) LoginFormPresent(ctx context.Context) (bool, error) {
	var present bool
	err := h.callOnDocument(ctx, formPresentScript, &present,
		h.options.Selectors.Username,
		h.options.Selectors.Password,
		h.options.Selectors.Submit,
	)
	return present, err
}

// FillAndSubmit enters credentials into the login form and clicks its submit control
func (h *Host) FillAndSubmit(ctx context.Context, credentials models.Credentials) error {
	var submitted bool
	err := h.callOnDocument(ctx, fillAndSubmitScript, &submitted,
		h.options.Selectors.Username,
		h.options.Selectors.Password,
		h.options.Selectors.Submit,
		credentials.Username,
		credentials.Password,
	)
	if err != nil {
		return err
	}
	if !submitted {
		return fmt.Errorf("login form not found: %w", interfaces.ErrPageStateUnavailable)
	}
	return nil
}

// InsertCSS adds css to the loaded document, replacing any earlier injection
func (h *Host) InsertCSS(ctx context.Context, css string) error {
	var ok bool
	return h.callOnDocument(ctx, insertCSSScript, &ok, injectedStyleID, css)
}

// callOnDocument calls fn with `this` bound to the main window's document. Script
// exceptions are reported as ErrPageStateUnavailable.
func (h *Host) callOnDocument(ctx context.Context, fn string, res any, args ...any) error {
	return h.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var document *runtime.RemoteObject
		if err := chromedp.Evaluate("document", &document).Do(ctx); err != nil {
			return pageError(err)
		}
		if document == nil || document.ObjectID == "" {
			return fmt.Errorf("document not available: %w", interfaces.ErrPageStateUnavailable)
		}
		defer runtime.ReleaseObject(document.ObjectID).Do(ctx)

		bindDocument := func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(document.ObjectID)
		}
		return pageError(chromedp.CallFunctionOn(fn, res, bindDocument, args...).Do(ctx))
	}))
}

func pageError(err error) error {
	if err == nil {
		return nil
	}
	var exception *runtime.ExceptionDetails
	if errors.As(err, &exception) {
		return fmt.Errorf("%w: %v", interfaces.ErrPageStateUnavailable, exception)
	}
	return err
}
