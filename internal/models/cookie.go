package models

import (
	"strings"
)

// SameSite values as written to the cookies file
const (
	SameSiteUnspecified = "unspecified"
	SameSiteNone        = "no_restriction"
	SameSiteLax         = "lax"
	SameSiteStrict      = "strict"
)

// CookieRecord is one persisted browser cookie. URL is the address the cookie is
// applied against on restore; records without URL or Name are never applied.
type CookieRecord struct {
	URL            string  `json:"url,omitempty"`
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain,omitempty"`
	HostOnly       bool    `json:"hostOnly,omitempty"`
	Path           string  `json:"path,omitempty"`
	Secure         bool    `json:"secure,omitempty"`
	HTTPOnly       bool    `json:"httpOnly,omitempty"`
	Session        bool    `json:"session,omitempty"`
	ExpirationDate float64 `json:"expirationDate,omitempty"` // Seconds since epoch, 0 for session cookies
	SameSite       string  `json:"sameSite,omitempty"`
}

// Applicable reports whether the record carries enough identity to be restored
func (c CookieRecord) Applicable() bool {
	return c.URL != "" && c.Name != ""
}

// Key identifies the cookie within a snapshot
func (c CookieRecord) Key() string {
	return c.URL + "|" + c.Name
}

// CookieURL builds the address a cookie with the given attributes belongs to
func CookieURL(domain, path string, secure bool) string {
	host := strings.TrimPrefix(domain, ".")
	if host == "" {
		return ""
	}
	scheme := "http"
	if secure {
		scheme = "https"
	}
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return scheme + "://" + host + path
}
