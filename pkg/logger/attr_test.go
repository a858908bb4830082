package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/logger"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestGroup(t *testing.T) {
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	assert.True(t, logger.Errors(nil).Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestNotificationID(t *testing.T) {
	attr := logger.NotificationID("abc")
	require.Equal(t, "notification_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.String())

	assert.True(t, logger.NotificationID("").Equal(slog.Attr{}))
}

func TestStatus(t *testing.T) {
	attr := logger.Status(stringer("clicked"))
	require.Equal(t, "status", attr.Key)
	assert.Equal(t, "clicked", attr.Value.String())
}

func TestDomainAttrs(t *testing.T) {
	assert.Equal(t, int64(7), logger.Handle(7).Value.Int64())
	assert.Equal(t, "big_picture", logger.Style("big_picture").Value.String())
	assert.Equal(t, "http://x/img.png", logger.URL("http://x/img.png").Value.String())
	assert.True(t, logger.URL("").Equal(slog.Attr{}))
	assert.Equal(t, "myapp://open", logger.ClickAction("myapp://open").Value.String())
	assert.Equal(t, 2, int(logger.Attempt(2).Value.Int64()))
	assert.Equal(t, time.Second, logger.Duration(time.Second).Value.Duration())
	assert.Equal(t, "pipeline", logger.Component("pipeline").Value.String())
}
