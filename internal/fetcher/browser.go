package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog"
)

// BrowserFetcher renders the page in a headless Chromium with stealth
// patches, for shops that only serve their content to real browsers.
type BrowserFetcher struct {
	timeout time.Duration
	log     zerolog.Logger
}

var _ Fetcher = (*BrowserFetcher)(nil)

func NewBrowserFetcher(timeout time.Duration, log zerolog.Logger) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &BrowserFetcher{timeout: timeout, log: log}
}

func (b *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	html, err := b.render(ctx, pageURL)
	if err != nil {
		return "", &FetchError{URL: pageURL, Attempts: []Attempt{{Via: "browser", Err: err}}}
	}
	return html, nil
}

func (b *BrowserFetcher) render(ctx context.Context, pageURL string) (html string, err error) {
	b.log.Info().Msg("Launching headless browser...")
	browser, err := launchBrowser()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	// rod reports some failures by panicking
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("browser panic: %v", r)
		}
	}()

	page = page.Context(ctx).Timeout(b.timeout)

	b.log.Info().Str("url", pageURL).Msg("Navigating...")
	if err := page.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("navigating: %w", err)
	}
	if err := page.WaitStable(time.Second); err != nil {
		return "", fmt.Errorf("waiting for page: %w", err)
	}
	return page.HTML()
}

func launchBrowser() (*rod.Browser, error) {
	l := launcher.New().Headless(true).NoSandbox(true)
	u, err := l.Launch()
	if err != nil {
		return nil, err
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return browser, nil
}
