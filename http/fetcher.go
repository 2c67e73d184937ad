// Package http provides an HTTP-based implementation of praxis.Fetcher.
// All site sources share one fetcher so politeness headers and timeouts
// are applied uniformly.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"praxis"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent identifies the collector to the sites it visits.
const DefaultUserAgent = "praxis-collector/1.0"

// Ensure Fetcher implements praxis.Fetcher at compile time.
var _ praxis.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page bodies over plain HTTP. It does not execute
// JavaScript; sources needing a rendered DOM are out of scope.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHTTPClient sets a custom HTTP client. The timeout option is
// ignored when a client is supplied.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}

	return f
}

// Fetch retrieves the body from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", praxis.Errorf(praxis.EINVALID, "create request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", praxis.Errorf(praxis.ETIMEOUT, "fetch %s timed out: %v", url, err)
		}
		return "", praxis.Errorf(praxis.EUNAVAILABLE, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return "", praxis.Errorf(praxis.ENOTFOUND, "fetch %s: HTTP %d", url, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", praxis.Errorf(praxis.ERATELIMITED, "fetch %s: HTTP %d", url, resp.StatusCode)
	default:
		return "", praxis.Errorf(praxis.EUNAVAILABLE, "fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", praxis.Errorf(praxis.EUNAVAILABLE, "read %s: %v", url, err)
	}

	return string(body), nil
}
