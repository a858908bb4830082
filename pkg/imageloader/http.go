package imageloader

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// HTTPLoader fetches images over HTTP(S).
type HTTPLoader struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	maxPixels int64
	userAgent string
	limiter   *rate.Limiter
}

// HTTPOption configures an HTTPLoader.
type HTTPOption func(*HTTPLoader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(l *HTTPLoader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithTimeout bounds a single fetch. Default is 15 seconds.
func WithTimeout(d time.Duration) HTTPOption {
	return func(l *HTTPLoader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithMaxBytes caps the response body size. Default is DefaultMaxBytes.
func WithMaxBytes(n int64) HTTPOption {
	return func(l *HTTPLoader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithMaxPixels caps the decoded image size. Default is DefaultMaxPixels.
func WithMaxPixels(n int64) HTTPOption {
	return func(l *HTTPLoader) {
		if n > 0 {
			l.maxPixels = n
		}
	}
}

// WithUserAgent sets the User-Agent header of image requests.
func WithUserAgent(ua string) HTTPOption {
	return func(l *HTTPLoader) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// WithRateLimit throttles outgoing fetches to r per second with the given burst.
func WithRateLimit(r float64, burst int) HTTPOption {
	return func(l *HTTPLoader) {
		if r > 0 {
			l.limiter = rate.NewLimiter(rate.Limit(r), max(burst, 1))
		}
	}
}

// NewHTTPLoader creates a loader for http and https URLs.
func NewHTTPLoader(opts ...HTTPOption) *HTTPLoader {
	l := &HTTPLoader{
		client:    &http.Client{},
		timeout:   15 * time.Second,
		maxBytes:  DefaultMaxBytes,
		maxPixels: DefaultMaxPixels,
		userAgent: "pushkit-imageloader/1.0",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches rawURL and decodes the body. Responses over the byte or pixel
// limit fail with ErrTooLarge.
func (l *HTTPLoader) Load(ctx context.Context, rawURL string) (image.Image, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidURL)
	}

	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("imageloader: create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imageloader: fetch %s: %w", u.Redacted(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %w: %d", ErrNotFound, ErrBadStatus, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	if resp.ContentLength > l.maxBytes {
		return nil, fmt.Errorf("%w: content length %d", ErrTooLarge, resp.ContentLength)
	}

	return readAndDecode(resp.Body, l.maxBytes, l.maxPixels)
}
