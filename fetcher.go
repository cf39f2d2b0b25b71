package boardarch

import "context"

// Fetcher retrieves rendered HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered
// content and anti-bot interstitials.
//
// A non-nil error is the explicit "fetch failed" signal: callers must treat
// it as no information about the page, never as an empty page. An anti-bot
// challenge page is a failure (EUNAVAILABLE), not content.
type Fetcher interface {
	// Fetch navigates to the URL, waits for the page to render,
	// and returns the rendered HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// HostLimiter provides per-host rate limiting for outbound fetches.
type HostLimiter interface {
	// Wait blocks until the rate limit allows a request to the host.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, host string) error
}
