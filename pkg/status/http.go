package status

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pushkit/pkg/logger"
)

const (
	statusPath = "/notifications/status"
	tokenPath  = "/devices/token"
	userAgent  = "pushkit-status/1.0"
)

type statusReport struct {
	NotificationID string    `json:"notification_id"`
	Status         Status    `json:"status"`
	DeviceToken    string    `json:"device_token,omitempty"`
	ReportedAt     time.Time `json:"reported_at"`
}

type tokenRegistration struct {
	Token string `json:"token"`
}

// HTTPReporter reports lifecycle statuses and device tokens to a remote
// status service over JSON/HTTP with retries.
// Zero value is not usable; use NewHTTPReporter.
type HTTPReporter struct {
	baseURL    string
	client     *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    BackoffStrategy
	breaker    *CircuitBreaker
	secret     string
	headers    map[string]string
	tokens     TokenStore
	logger     *slog.Logger
	now        func() time.Time
}

// NewHTTPReporter creates a reporter for the status service at baseURL.
func NewHTTPReporter(baseURL string, opts ...HTTPOption) (*HTTPReporter, error) {
	if err := validateBaseURL(baseURL); err != nil {
		return nil, err
	}

	r := &HTTPReporter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout:    10 * time.Second,
		maxRetries: 3,
		backoff:    DefaultBackoffStrategy(),
		headers:    make(map[string]string),
		tokens:     NewMemoryTokenStore(),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// UpdateStatus posts {notification_id, status, device_token, reported_at}.
// A token store failure is logged and the report is sent without a token.
func (r *HTTPReporter) UpdateStatus(ctx context.Context, notificationID string, s Status) error {
	if notificationID == "" {
		return ErrMissingNotificationID
	}
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}

	token, err := r.tokens.Token(ctx)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "device token unavailable for status report",
			logger.NotificationID(notificationID),
			logger.Error(err),
		)
		token = ""
	}

	return r.send(ctx, statusPath, statusReport{
		NotificationID: notificationID,
		Status:         s,
		DeviceToken:    token,
		ReportedAt:     r.now().UTC(),
	})
}

// SetDeviceToken stores token locally and registers it with the status service.
func (r *HTTPReporter) SetDeviceToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	if err := r.tokens.SetToken(ctx, token); err != nil {
		return fmt.Errorf("%w: %w", ErrTokenStore, err)
	}

	return r.send(ctx, tokenPath, tokenRegistration{Token: token})
}

func (r *HTTPReporter) send(ctx context.Context, path string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal status payload: %w", err)
	}

	// Same event id across retries so the service can deduplicate.
	eventID := uuid.NewString()
	endpoint := r.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.backoff.NextInterval(attempt)):
			}
		}

		// Earlier failures may have opened the circuit.
		if r.breaker != nil && !r.breaker.Allow() {
			if lastErr != nil {
				return fmt.Errorf("%w after %d attempts: %w", ErrCircuitOpen, attempt, lastErr)
			}
			return ErrCircuitOpen
		}

		code, err := r.attempt(ctx, endpoint, eventID, payload)

		if r.breaker != nil {
			if err == nil {
				r.breaker.RecordSuccess()
			} else {
				r.breaker.RecordFailure()
			}
		}

		if err == nil {
			return nil
		}
		lastErr = err

		r.logger.LogAttrs(ctx, slog.LevelDebug, "status request attempt failed",
			logger.URL(endpoint),
			logger.Attempt(attempt+1),
			logger.Error(err),
		)

		if isPermanentStatus(code) {
			return fmt.Errorf("%w: %w", ErrPermanentFailure, err)
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrDeliveryFailed, r.maxRetries+1, lastErr)
}

func (r *HTTPReporter) attempt(ctx context.Context, endpoint, eventID string, payload []byte) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(HeaderEventID, eventID)
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.secret != "" {
		ts := r.now().Unix()
		req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
		req.Header.Set(HeaderSignature, Sign(r.secret, ts, payload))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return 0, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return 0, fmt.Errorf("%w: %w", ErrTemporaryFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024*64))
		return resp.StatusCode, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024*64))
	msg := fmt.Sprintf("status service returned %d", resp.StatusCode)
	if len(body) > 0 {
		b := strings.ReplaceAll(string(body), "\n", " ")
		if len(b) > 200 {
			b = b[:200] + "..."
		}
		msg += ": " + b
	}
	return resp.StatusCode, fmt.Errorf("%s", msg)
}

// isPermanentStatus reports 4xx codes that will not change on retry.
func isPermanentStatus(code int) bool {
	if code < 400 || code >= 500 {
		return false
	}
	switch code {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	}
	return true
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}
