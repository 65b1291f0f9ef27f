package browser

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"

	"github.com/ternarybob/sessionshell/internal/models"
)

// Cookies returns every cookie in the browser profile. It talks to the browser
// session, so it keeps working after the main window has closed.
func (h *Host) Cookies(ctx context.Context) ([]models.CookieRecord, error) {
	bctx, err := h.browserExecutor(ctx)
	if err != nil {
		return nil, err
	}

	cookies, err := storage.GetCookies().Do(bctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}

	records := make([]models.CookieRecord, 0, len(cookies))
	for _, c := range cookies {
		records = append(records, fromNetworkCookie(c))
	}
	return records, nil
}

// SetCookie applies one record to the browser profile
func (h *Host) SetCookie(ctx context.Context, record models.CookieRecord) error {
	bctx, err := h.browserExecutor(ctx)
	if err != nil {
		return err
	}

	if err := storage.SetCookies([]*network.CookieParam{toCookieParam(record)}).Do(bctx); err != nil {
		return fmt.Errorf("failed to set cookie %s: %w", record.Name, err)
	}
	return nil
}

func fromNetworkCookie(c *network.Cookie) models.CookieRecord {
	record := models.CookieRecord{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		HostOnly: !strings.HasPrefix(c.Domain, "."),
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		Session:  c.Session,
		SameSite: sameSiteToRecord(c.SameSite),
	}
	if !c.Session && c.Expires > 0 {
		record.ExpirationDate = c.Expires
	}
	record.URL = models.CookieURL(c.Domain, c.Path, c.Secure)
	return record
}

func toCookieParam(record models.CookieRecord) *network.CookieParam {
	param := &network.CookieParam{
		Name:     record.Name,
		Value:    record.Value,
		URL:      record.URL,
		Path:     record.Path,
		Secure:   record.Secure,
		HTTPOnly: record.HTTPOnly,
		SameSite: sameSiteToNetwork(record.SameSite),
	}

	// A host-only cookie is scoped by its url; passing a domain would widen it
	if !record.HostOnly && record.Domain != "" {
		param.Domain = record.Domain
	}

	if !record.Session && record.ExpirationDate > 0 {
		sec, frac := math.Modf(record.ExpirationDate)
		expires := cdp.TimeSinceEpoch(time.Unix(int64(sec), int64(frac*float64(time.Second))))
		param.Expires = &expires
	}

	return param
}

func sameSiteToRecord(s network.CookieSameSite) string {
	switch s {
	case network.CookieSameSiteStrict:
		return models.SameSiteStrict
	case network.CookieSameSiteLax:
		return models.SameSiteLax
	case network.CookieSameSiteNone:
		return models.SameSiteNone
	default:
		return models.SameSiteUnspecified
	}
}

func sameSiteToNetwork(s string) network.CookieSameSite {
	switch strings.ToLower(s) {
	case models.SameSiteStrict:
		return network.CookieSameSiteStrict
	case models.SameSiteLax:
		return network.CookieSameSiteLax
	case models.SameSiteNone, "none":
		return network.CookieSameSiteNone
	default:
		return ""
	}
}
