package interfaces

import (
	"context"

	"github.com/ternarybob/sessionshell/internal/models"
)

// PageInspector classifies the document loaded in the main window
type PageInspector interface {
	Classify(ctx context.Context) (models.PageLoginState, error)

	// LoginFormPresent reports whether the username, password and submit controls exist
	LoginFormPresent(ctx context.Context) (bool, error)
}

// PageActuator fills and submits the login form of the loaded document
type PageActuator interface {
	FillAndSubmit(ctx context.Context, credentials models.Credentials) error
}

// StyleInjector adds a style sheet to the loaded document
type StyleInjector interface {
	InsertCSS(ctx context.Context, css string) error
}

// Navigator loads an address into the main window
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// CookieJar is the browser profile's cookie store
type CookieJar interface {
	// Cookies returns every cookie in the profile
	Cookies(ctx context.Context) ([]models.CookieRecord, error)

	// SetCookie applies a single record
	SetCookie(ctx context.Context, cookie models.CookieRecord) error
}
