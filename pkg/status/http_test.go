package status_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/status"
)

type captured struct {
	path    string
	body    []byte
	headers http.Header
}

func newCaptureServer(t *testing.T, code func(n int32) int) (*httptest.Server, func() []captured) {
	t.Helper()

	var (
		mu    sync.Mutex
		reqs  []captured
		count atomic.Int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, captured{path: r.URL.Path, body: body, headers: r.Header.Clone()})
		mu.Unlock()
		w.WriteHeader(code(count.Add(1)))
	}))
	t.Cleanup(srv.Close)

	return srv, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), reqs...)
	}
}

func always(code int) func(int32) int { return func(int32) int { return code } }

func fastRetry() status.HTTPOption {
	return status.WithBackoff(status.FixedBackoff{Interval: time.Millisecond})
}

func TestNewHTTPReporter_InvalidURL(t *testing.T) {
	t.Parallel()

	for _, u := range []string{"", "ftp://example.com", "http://", "://bad"} {
		_, err := status.NewHTTPReporter(u)
		assert.ErrorIs(t, err, status.ErrInvalidURL, u)
	}
}

func TestHTTPReporter_UpdateStatus(t *testing.T) {
	t.Parallel()

	srv, reqs := newCaptureServer(t, always(http.StatusOK))
	store := status.NewMemoryTokenStore()
	require.NoError(t, store.SetToken(context.Background(), "tok-1"))

	rep, err := status.NewHTTPReporter(srv.URL+"/", status.WithTokenStore(store), status.WithHeader("X-Api-Key", "k"))
	require.NoError(t, err)

	require.NoError(t, rep.UpdateStatus(context.Background(), "n-1", status.Delivered))

	got := reqs()
	require.Len(t, got, 1)
	assert.Equal(t, "/notifications/status", got[0].path)
	assert.Equal(t, "application/json", got[0].headers.Get("Content-Type"))
	assert.Equal(t, "k", got[0].headers.Get("X-Api-Key"))
	assert.NotEmpty(t, got[0].headers.Get(status.HeaderEventID))
	assert.Empty(t, got[0].headers.Get(status.HeaderSignature))

	var body map[string]any
	require.NoError(t, json.Unmarshal(got[0].body, &body))
	assert.Equal(t, "n-1", body["notification_id"])
	assert.Equal(t, "DELIVERED", body["status"])
	assert.Equal(t, "tok-1", body["device_token"])
	assert.NotEmpty(t, body["reported_at"])
}

func TestHTTPReporter_UpdateStatusValidation(t *testing.T) {
	t.Parallel()

	srv, reqs := newCaptureServer(t, always(http.StatusOK))
	rep, err := status.NewHTTPReporter(srv.URL)
	require.NoError(t, err)

	assert.ErrorIs(t, rep.UpdateStatus(context.Background(), "", status.Clicked), status.ErrMissingNotificationID)
	assert.ErrorIs(t, rep.UpdateStatus(context.Background(), "n", status.Status("x")), status.ErrInvalidStatus)
	assert.Empty(t, reqs())
}

func TestHTTPReporter_SetDeviceToken(t *testing.T) {
	t.Parallel()

	srv, reqs := newCaptureServer(t, always(http.StatusNoContent))
	store := status.NewMemoryTokenStore()
	rep, err := status.NewHTTPReporter(srv.URL, status.WithTokenStore(store))
	require.NoError(t, err)

	assert.ErrorIs(t, rep.SetDeviceToken(context.Background(), ""), status.ErrEmptyToken)
	require.NoError(t, rep.SetDeviceToken(context.Background(), "tok-2"))

	got := reqs()
	require.Len(t, got, 1)
	assert.Equal(t, "/devices/token", got[0].path)
	assert.JSONEq(t, `{"token":"tok-2"}`, string(got[0].body))

	stored, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", stored)
}

func TestHTTPReporter_Signature(t *testing.T) {
	t.Parallel()

	srv, reqs := newCaptureServer(t, always(http.StatusOK))
	rep, err := status.NewHTTPReporter(srv.URL, status.WithSigningSecret("s3cret"))
	require.NoError(t, err)

	require.NoError(t, rep.UpdateStatus(context.Background(), "n-1", status.Dismissed))

	got := reqs()
	require.Len(t, got, 1)
	err = status.VerifySignature("s3cret", got[0].body,
		got[0].headers.Get(status.HeaderSignature),
		got[0].headers.Get(status.HeaderTimestamp),
		5*time.Minute,
	)
	assert.NoError(t, err)

	err = status.VerifySignature("other", got[0].body,
		got[0].headers.Get(status.HeaderSignature),
		got[0].headers.Get(status.HeaderTimestamp),
		5*time.Minute,
	)
	assert.ErrorIs(t, err, status.ErrInvalidSignature)
}

func TestHTTPReporter_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	srv, reqs := newCaptureServer(t, func(n int32) int {
		if n < 3 {
			return http.StatusServiceUnavailable
		}
		return http.StatusOK
	})
	rep, err := status.NewHTTPReporter(srv.URL, fastRetry(), status.WithMaxRetries(3))
	require.NoError(t, err)

	require.NoError(t, rep.UpdateStatus(context.Background(), "n-1", status.Clicked))

	got := reqs()
	require.Len(t, got, 3)
	assert.Equal(t, got[0].headers.Get(status.HeaderEventID), got[2].headers.Get(status.HeaderEventID))
}

func TestHTTPReporter_GivesUp(t *testing.T) {
	t.Parallel()

	srv, reqs := newCaptureServer(t, always(http.StatusInternalServerError))
	rep, err := status.NewHTTPReporter(srv.URL, fastRetry(), status.WithMaxRetries(2))
	require.NoError(t, err)

	err = rep.UpdateStatus(context.Background(), "n-1", status.Clicked)
	assert.ErrorIs(t, err, status.ErrDeliveryFailed)
	assert.Len(t, reqs(), 3)
}

func TestHTTPReporter_PermanentFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code      int
		permanent bool
		calls     int
	}{
		{code: http.StatusBadRequest, permanent: true, calls: 1},
		{code: http.StatusNotFound, permanent: true, calls: 1},
		{code: http.StatusTooManyRequests, permanent: false, calls: 2},
		{code: http.StatusRequestTimeout, permanent: false, calls: 2},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			t.Parallel()

			srv, reqs := newCaptureServer(t, always(tt.code))
			rep, err := status.NewHTTPReporter(srv.URL, fastRetry(), status.WithMaxRetries(1))
			require.NoError(t, err)

			err = rep.UpdateStatus(context.Background(), "n", status.Delivered)
			if tt.permanent {
				assert.ErrorIs(t, err, status.ErrPermanentFailure)
			} else {
				assert.ErrorIs(t, err, status.ErrDeliveryFailed)
			}
			assert.Len(t, reqs(), tt.calls)
		})
	}
}

func TestHTTPReporter_CircuitBreaker(t *testing.T) {
	t.Parallel()

	srv, reqs := newCaptureServer(t, always(http.StatusBadGateway))
	cb := status.NewCircuitBreaker(2, 1, time.Hour)
	rep, err := status.NewHTTPReporter(srv.URL, status.WithMaxRetries(0), status.WithCircuitBreaker(cb))
	require.NoError(t, err)

	ctx := context.Background()
	assert.ErrorIs(t, rep.UpdateStatus(ctx, "n", status.Delivered), status.ErrDeliveryFailed)
	assert.ErrorIs(t, rep.UpdateStatus(ctx, "n", status.Delivered), status.ErrDeliveryFailed)
	assert.Equal(t, status.CircuitOpen, cb.State())

	err = rep.UpdateStatus(ctx, "n", status.Delivered)
	assert.True(t, status.IsCircuitOpen(err))
	assert.Len(t, reqs(), 2)
}

func TestHTTPReporter_CircuitOpensDuringRetries(t *testing.T) {
	t.Parallel()

	srv, reqs := newCaptureServer(t, always(http.StatusServiceUnavailable))
	cb := status.NewCircuitBreaker(2, 1, time.Hour)
	rep, err := status.NewHTTPReporter(srv.URL, fastRetry(), status.WithMaxRetries(5), status.WithCircuitBreaker(cb))
	require.NoError(t, err)

	err = rep.UpdateStatus(context.Background(), "n", status.Delivered)
	require.Error(t, err)
	assert.True(t, status.IsCircuitOpen(err))
	assert.Contains(t, err.Error(), "503")
	assert.Len(t, reqs(), 2)
	assert.Equal(t, status.CircuitOpen, cb.State())
}

func TestHTTPReporter_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	rep, err := status.NewHTTPReporter(srv.URL, status.WithTimeout(20*time.Millisecond), status.WithMaxRetries(0))
	require.NoError(t, err)

	err = rep.UpdateStatus(context.Background(), "n", status.Delivered)
	assert.ErrorIs(t, err, status.ErrTimeout)
}
