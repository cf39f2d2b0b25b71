// Package rod provides a browser-based implementation of boardarch.Fetcher
// for forums that sit behind JavaScript rendering or anti-bot interstitials.
package rod

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/boardarch"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout is the default per-page fetch timeout.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements boardarch.Fetcher at compile time.
var _ boardarch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// A page whose rendered content is an anti-bot challenge is reported as an
// EUNAVAILABLE fetch failure, never as content.
//
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	cookies []*proto.NetworkCookieParam
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout for a single page fetch.
// Defaults to DefaultFetchTimeout if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}
	f.manager = manager

	if len(f.cookies) > 0 {
		if err := manager.SetCookies(f.cookies); err != nil {
			manager.Close()
			return nil, err
		}
	}

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}
	f.manager.IncrementPageCount()

	if isChallengePage(html) {
		return "", boardarch.Errorf(boardarch.EUNAVAILABLE, "anti-bot challenge at %s", url)
	}

	return html, nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// challengeMarkers are title fragments rendered by anti-bot interstitials.
var challengeMarkers = []string{
	"just a moment",
	"attention required",
	"checking your browser",
}

// isChallengePage reports whether the rendered HTML is an anti-bot
// interstitial rather than forum content.
func isChallengePage(html string) bool {
	title := pageTitle(html)
	for _, marker := range challengeMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}

// pageTitle extracts the lowercased <title> text without a full parse.
func pageTitle(html string) string {
	lower := strings.ToLower(html)
	i := strings.Index(lower, "<title")
	if i < 0 {
		return ""
	}
	rest := lower[i:]
	j := strings.Index(rest, ">")
	if j < 0 {
		return ""
	}
	rest = rest[j+1:]
	k := strings.Index(rest, "</title>")
	if k < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:k])
}

// storageState mirrors the Playwright storage-state JSON format, the shape
// in which a previously solved anti-bot session is handed to this process.
// Only cookies are used.
type storageState struct {
	Cookies []storageCookie `json:"cookies"`
}

type storageCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// WithStorageState loads cookies from a Playwright-style storage-state JSON
// file into the browser. The file is an opaque credential produced outside
// this process; a missing file is an error, a file with no cookies is not.
func WithStorageState(path string) (Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var state storageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, boardarch.Errorf(boardarch.ECORRUPT, "storage state %s is corrupt: %v", path, err)
	}

	cookies := make([]*proto.NetworkCookieParam, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		if c.Name == "" || c.Value == "" {
			continue
		}
		cookie := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			cookie.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		switch strings.ToLower(c.SameSite) {
		case "strict":
			cookie.SameSite = proto.NetworkCookieSameSiteStrict
		case "lax":
			cookie.SameSite = proto.NetworkCookieSameSiteLax
		}
		cookies = append(cookies, cookie)
	}

	return func(f *Fetcher) {
		f.cookies = cookies
	}, nil
}
