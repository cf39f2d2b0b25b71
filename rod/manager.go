package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// BrowserManager manages browser lifecycle with automatic recycling to
// prevent memory accumulation. Chrome's baseline memory grows steadily over
// a long crawl and never returns to initial levels even with proper page
// cleanup, so the browser is relaunched periodically.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	cookies   []*proto.NetworkCookieParam
	pageCount int64
	maxPages  int64
	mu        sync.Mutex
	closed    atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the maximum number of pages before the browser is
// recycled. Defaults to DefaultMaxPages if not specified.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// NewBrowserManager creates a new BrowserManager that launches a headless
// Chrome browser. Close must be called when it is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(bm)
	}

	if err := bm.launchBrowser(); err != nil {
		return nil, err
	}

	return bm, nil
}

// Browser returns the current browser instance, recycling first if the page
// count has reached maxPages. Callers should call IncrementPageCount after
// using the browser to process a page.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if atomic.LoadInt64(&bm.pageCount) >= bm.maxPages {
		bm.recycleBrowser()
	}

	return bm.browser
}

// IncrementPageCount increments the page counter toward the recycling
// threshold. Call this after successfully processing a page.
func (bm *BrowserManager) IncrementPageCount() {
	atomic.AddInt64(&bm.pageCount, 1)
}

// SetCookies installs session cookies into the browser. The cookies are
// retained and re-installed after every recycle, so a solved anti-bot
// session survives browser relaunches.
func (bm *BrowserManager) SetCookies(cookies []*proto.NetworkCookieParam) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	bm.cookies = cookies
	return bm.browser.SetCookies(cookies)
}

// Close releases browser resources. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if bm.closed.Swap(true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
	}
	return err
}

// launchBrowser starts a fresh headless Chrome instance.
// The caller must hold bm.mu (or be the constructor).
func (bm *BrowserManager) launchBrowser() error {
	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = l
	return nil
}

// recycleBrowser tears down the current browser and launches a fresh one,
// restoring any installed cookies. The caller must hold bm.mu. A failed
// relaunch keeps the old browser rather than leaving no browser at all.
func (bm *BrowserManager) recycleBrowser() {
	old, oldLauncher := bm.browser, bm.launcher

	if err := bm.launchBrowser(); err != nil {
		bm.browser, bm.launcher = old, oldLauncher
		return
	}

	atomic.StoreInt64(&bm.pageCount, 0)
	if len(bm.cookies) > 0 {
		_ = bm.browser.SetCookies(bm.cookies)
	}

	if old != nil {
		_ = old.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
}
