package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const (
	// DefaultUserAgent identifies the scraper politely to the source site.
	DefaultUserAgent = "park-report/1.0 (github.com/parkreport/park-report)"

	// DefaultNavTimeout bounds a single navigate-and-render round trip.
	DefaultNavTimeout = 30 * time.Second
)

// Fetcher retrieves a URL's fully-rendered markup as a navigable document.
// It is the only capability the rest of the system sees; tests substitute
// their own implementation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Options configures the headless browser.
type Options struct {
	BinaryPath string        // path to the Chrome binary; empty uses the system default
	UserAgent  string        // empty uses DefaultUserAgent
	NavTimeout time.Duration // per-fetch navigation timeout; zero uses DefaultNavTimeout
	Headless   bool
}

// Chrome drives a single headless Chrome tab via chromedp. The tab is
// mutated in place by every Fetch (current-page state), so a Chrome must
// only ever be used by one session, sequentially.
type Chrome struct {
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	navTimeout  time.Duration
}

// NewChrome launches a browser and opens the tab all subsequent fetches
// share. Close must be called to tear it down.
func NewChrome(ctx context.Context, opts Options) (*Chrome, error) {
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	navTimeout := opts.NavTimeout
	if navTimeout <= 0 {
		navTimeout = DefaultNavTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(ua),
	)
	if opts.BinaryPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.BinaryPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Start the browser now so a missing or broken binary fails construction
	// instead of the first fetch.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return &Chrome{
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		navTimeout:  navTimeout,
	}, nil
}

// Fetch navigates the shared tab to url, waits for the page to render, and
// returns the rendered markup parsed into a document. Navigation failures
// propagate to the caller; no retry happens at this layer.
func (c *Chrome) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithTimeout(c.tabCtx, c.navTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return doc, nil
}

// Close shuts the tab and the browser process down.
func (c *Chrome) Close() error {
	c.cancelTab()
	c.cancelAlloc()
	return nil
}
