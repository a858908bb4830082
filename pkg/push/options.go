package push

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/pushkit/pkg/async"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLoop renders on a caller-owned loop. By default the service starts its
// own loop and closes it in Close.
func WithLoop(loop *async.Loop) Option {
	return func(s *Service) {
		if loop != nil {
			s.loop = loop
			s.ownsLoop = false
		}
	}
}

// WithMetrics records pipeline metrics. Nil disables them.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithFetchTimeout bounds each image fetch. Default is 30 seconds.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithDeletedMessagesHook is called when the transport reports dropped messages,
// so the host can pull pending notifications from its backend.
func WithDeletedMessagesHook(fn func(ctx context.Context)) Option {
	return func(s *Service) { s.onDeleted = fn }
}
