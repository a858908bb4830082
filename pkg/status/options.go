package status

import (
	"log/slog"
	"net/http"
	"time"
)

// HTTPOption configures an HTTPReporter.
type HTTPOption func(*HTTPReporter)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(r *HTTPReporter) {
		if client != nil {
			r.client = client
		}
	}
}

// WithTimeout sets the per-attempt request timeout. Default is 10 seconds.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(r *HTTPReporter) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithMaxRetries sets how many times a failed report is retried. Default is 3.
func WithMaxRetries(n int) HTTPOption {
	return func(r *HTTPReporter) {
		if n >= 0 {
			r.maxRetries = n
		}
	}
}

// WithBackoff sets the delay strategy between retries.
func WithBackoff(strategy BackoffStrategy) HTTPOption {
	return func(r *HTTPReporter) {
		if strategy != nil {
			r.backoff = strategy
		}
	}
}

// WithSigningSecret enables HMAC-SHA256 request signing.
func WithSigningSecret(secret string) HTTPOption {
	return func(r *HTTPReporter) {
		r.secret = secret
	}
}

// WithCircuitBreaker guards the status service with cb.
func WithCircuitBreaker(cb *CircuitBreaker) HTTPOption {
	return func(r *HTTPReporter) {
		r.breaker = cb
	}
}

// WithTokenStore sets where the device token is persisted and read from.
// Default is an in-memory store.
func WithTokenStore(store TokenStore) HTTPOption {
	return func(r *HTTPReporter) {
		if store != nil {
			r.tokens = store
		}
	}
}

// WithHeader adds a static header to every request, e.g. an API key.
func WithHeader(key, value string) HTTPOption {
	return func(r *HTTPReporter) {
		if key != "" && value != "" {
			r.headers[key] = value
		}
	}
}

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(r *HTTPReporter) {
		if l != nil {
			r.logger = l
		}
	}
}
