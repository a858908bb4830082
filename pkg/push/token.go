package push

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/pushkit/pkg/logger"
)

// TokenSource returns the current push token from the transport client.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// OnNewToken forwards an issued or rotated token to the reporter.
// Empty tokens are ignored; reporter failures are logged.
func (s *Service) OnNewToken(ctx context.Context, token string) {
	if token == "" {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "empty device token ignored")
		return
	}

	if err := s.reporter.SetDeviceToken(ctx, token); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to register device token", logger.Error(err))
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "device token registered")
}

// SyncToken reads the current token from src and forwards it. Call it after
// the user authenticates and on every start, since tokens may rotate silently.
func (s *Service) SyncToken(ctx context.Context, src TokenSource) error {
	token, err := src.Token(ctx)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to read device token", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrTokenSource, err)
	}

	s.OnNewToken(ctx, token)
	return nil
}

// OnDeletedMessages handles the transport signal that pending messages were
// dropped before delivery.
func (s *Service) OnDeletedMessages(ctx context.Context) {
	s.logger.LogAttrs(ctx, slog.LevelWarn, "transport dropped pending messages")
	if s.onDeleted != nil {
		s.onDeleted(ctx)
	}
}
