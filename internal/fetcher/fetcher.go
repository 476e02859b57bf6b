// Package fetcher retrieves product pages and import payloads, directly or
// through CORS-style proxies.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mspro-labs/tea-buddy/internal/config"
)

// Fetcher returns the HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// Attempt records one failed way of reaching a URL.
type Attempt struct {
	Via string
	Err error
}

// FetchError means the page could not be retrieved at all. Callers should
// suggest entering the tea by hand.
type FetchError struct {
	URL      string
	Attempts []Attempt
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("could not fetch %s after %d attempt(s)", e.URL, len(e.Attempts))
	if n := len(e.Attempts); n > 0 {
		msg += ": " + e.Attempts[n-1].Err.Error()
	}
	return msg + "; enter the details manually or use a direct download link"
}

func (e *FetchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

var errShortBody = errors.New("response too short")

// HTTPFetcher tries a direct request first and then each proxy template.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	proxies      []string
	minBodyBytes int
	log          zerolog.Logger
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher builds a fetcher from the fetch settings.
func NewHTTPFetcher(s config.FetchSettings, log zerolog.Logger) *HTTPFetcher {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPFetcher{
		client:       &http.Client{Timeout: timeout},
		userAgent:    s.UserAgent,
		proxies:      s.Proxies,
		minBodyBytes: s.MinBodyBytes,
		log:          log,
	}
}

// Fetch returns the first body longer than the minimum size.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	fe := &FetchError{URL: pageURL}
	for _, via := range f.routes() {
		body, err := f.get(ctx, via, pageURL)
		if err == nil && len(body) <= f.minBodyBytes {
			err = fmt.Errorf("%w (%d bytes)", errShortBody, len(body))
		}
		if err == nil {
			f.log.Debug().Str("url", pageURL).Str("via", label(via)).Int("bytes", len(body)).Msg("Fetched page")
			return body, nil
		}
		f.log.Debug().Err(err).Str("url", pageURL).Str("via", label(via)).Msg("Fetch attempt failed")
		fe.Attempts = append(fe.Attempts, Attempt{Via: label(via), Err: err})
		if ctx.Err() != nil {
			break
		}
	}
	return "", fe
}

// routes lists the direct route ("") followed by the proxy templates.
func (f *HTTPFetcher) routes() []string {
	return append([]string{""}, f.proxies...)
}

func label(via string) string {
	if via == "" {
		return "direct"
	}
	return via
}

// get performs a single request. via is empty for a direct request or a
// proxy template with one %s for the escaped target URL.
func (f *HTTPFetcher) get(ctx context.Context, via, target string) (string, error) {
	reqURL := target
	if via != "" {
		reqURL = fmt.Sprintf(via, url.QueryEscape(target))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	if isEnvelope(via) {
		var env struct {
			Contents string `json:"contents"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return "", fmt.Errorf("decoding proxy envelope: %w", err)
		}
		return env.Contents, nil
	}
	return string(data), nil
}

// isEnvelope reports whether a proxy answers {"contents": "..."} rather
// than the raw page.
func isEnvelope(via string) bool {
	if via == "" {
		return false
	}
	u, err := url.Parse(strings.Replace(via, "%s", "", 1))
	return err == nil && strings.HasSuffix(u.Path, "/get")
}
