package status_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/status"
)

func TestMemoryTokenStore(t *testing.T) {
	t.Parallel()

	s := status.NewMemoryTokenStore()
	ctx := context.Background()

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.SetToken(ctx, "a"))
	require.NoError(t, s.SetToken(ctx, "b"))
	tok, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", tok)
}

func TestConnectRedis_BadURL(t *testing.T) {
	t.Parallel()

	_, err := status.ConnectRedis(context.Background(), status.RedisConfig{ConnectionURL: "://nope"})
	assert.ErrorIs(t, err, status.ErrTokenStore)
}

func TestConnectRedis_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := status.ConnectRedis(context.Background(), status.RedisConfig{
		ConnectionURL:  "redis://127.0.0.1:1/0",
		RetryAttempts:  2,
		RetryInterval:  5 * time.Millisecond,
		ConnectTimeout: 500 * time.Millisecond,
	})
	assert.ErrorIs(t, err, status.ErrRedisNotReady)
}

func TestNopReporter(t *testing.T) {
	t.Parallel()

	r := status.NopReporter{Logger: logger.Discard()}
	assert.NoError(t, r.UpdateStatus(context.Background(), "n", status.Delivered))
	assert.NoError(t, r.SetDeviceToken(context.Background(), "t"))

	var _ status.Reporter = r
	var _ status.Reporter = (*status.HTTPReporter)(nil)
	var _ status.Reporter = (*status.AsyncReporter)(nil)
	var _ status.TokenStore = (*status.RedisTokenStore)(nil)
}
