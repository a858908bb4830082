package pushhttp_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/push"
	"github.com/dmitrymomot/pushkit/pkg/pushhttp"
	"github.com/dmitrymomot/pushkit/pkg/status"
	"github.com/dmitrymomot/pushkit/pkg/status/statustest"
)

type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) Dispatch(ctx context.Context, p push.Payload) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPipeline) OnNewToken(ctx context.Context, token string) {
	m.Called(ctx, token)
}

func (m *MockPipeline) OnDeletedMessages(ctx context.Context) {
	m.Called(ctx)
}

type env struct {
	pipeline *MockPipeline
	reporter *statustest.Recorder
	launched []push.Intent
	stream   *push.StreamSurface
	handler  http.Handler
}

func newEnv(t *testing.T, checks ...func(context.Context) error) *env {
	t.Helper()

	e := &env{
		pipeline: new(MockPipeline),
		reporter: statustest.NewRecorder(),
		stream:   push.NewStreamSurface(),
	}
	t.Cleanup(func() { _ = e.stream.Close() })

	launcher := push.LauncherFunc(func(_ context.Context, in push.Intent) error {
		e.launched = append(e.launched, in)
		return nil
	})

	reg := prometheus.NewRegistry()
	push.NewMetrics(reg)

	e.handler = pushhttp.NewRouter(pushhttp.Handlers{
		Pipeline:     e.pipeline,
		Click:        push.NewClickReceiver(e.reporter, launcher, push.WithReceiverLogger(logger.Discard())),
		Dismiss:      push.NewDismissReceiver(e.reporter, push.WithReceiverLogger(logger.Discard())),
		Stream:       e.stream,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		HealthChecks: checks,
		Logger:       logger.Discard(),
	})
	return e
}

func (e *env) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Messages(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	payload := push.Payload{"notification_id": "abc", "title": "Hi"}
	e.pipeline.On("Dispatch", mock.Anything, payload).Return(nil).Once()

	rec := e.do(http.MethodPost, "/messages", `{"data":{"notification_id":"abc","title":"Hi"}}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	e.pipeline.AssertExpectations(t)
}

func TestRouter_MessagesEmptyData(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.pipeline.On("Dispatch", mock.Anything, mock.MatchedBy(func(p push.Payload) bool { return p.IsEmpty() })).Return(nil).Once()

	rec := e.do(http.MethodPost, "/messages", `{"data":{}}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	e.pipeline.AssertExpectations(t)
}

func TestRouter_MessagesErrors(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/messages", `{"data":`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/messages", ``).Code)

	e.pipeline.On("Dispatch", mock.Anything, mock.Anything).Return(push.ErrServiceClosed).Once()
	rec := e.do(http.MethodPost, "/messages", `{"data":{"title":"x"}}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "closed")
}

func TestRouter_DeletedMessages(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.pipeline.On("OnDeletedMessages", mock.Anything).Once()

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodPost, "/messages/deleted", "").Code)
	e.pipeline.AssertExpectations(t)
}

func TestRouter_Tokens(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.pipeline.On("OnNewToken", mock.Anything, "tok-1").Once()

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodPost, "/tokens", `{"token":"tok-1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/tokens", `{"token":""}`).Code)
	e.pipeline.AssertExpectations(t)
}

func TestRouter_ClickCallback(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	rec := e.do(http.MethodPost, "/callbacks/click?notification_id=abc&click_action=myapp%3A%2F%2Fopen", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(http.MethodPost, "/callbacks/click", `{"notification_id":"def"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, []statustest.Report{
		{NotificationID: "abc", Status: status.Clicked},
		{NotificationID: "def", Status: status.Clicked},
	}, e.reporter.Reports())
	assert.Equal(t, []push.Intent{{Target: "myapp://open"}}, e.launched)
}

func TestRouter_DismissCallback(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	rec := e.do(http.MethodGet, "/callbacks/dismiss?notification_id=abc&click_action=ignored", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, []statustest.Report{{NotificationID: "abc", Status: status.Dismissed}}, e.reporter.Reports())
	assert.Empty(t, e.launched)
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	rec := newEnv(t).do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())

	ok := func(context.Context) error { return nil }
	rec = newEnv(t, ok).do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY", rec.Body.String())

	bad := func(context.Context) error { return errors.New("redis down") }
	rec = newEnv(t, ok, bad).do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NOT_READY", rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	rec := newEnv(t).do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Stream(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	srv := httptest.NewServer(e.handler)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/notifications/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	require.Eventually(t, func() bool { return e.stream.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, e.stream.Launch(context.Background(), push.Intent{Target: "myapp://open"}))

	reader := bufio.NewReader(resp.Body)
	eventLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: launch\n", eventLine)

	dataLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataLine, "data: "))

	var ev push.StreamEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(dataLine), "data: ")), &ev))
	assert.Equal(t, push.StreamLaunch, ev.Type)
	assert.Equal(t, "myapp://open", ev.Intent.Target)
}

func TestNewRouter_RequiresPipeline(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { pushhttp.NewRouter(pushhttp.Handlers{}) })
}
