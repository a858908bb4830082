package status

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/pushkit/pkg/logger"
)

// Reporter is the remote status service as seen by the notification pipeline.
// Callers treat both methods as fire-and-forget: a returned error is logged,
// never retried by the caller.
type Reporter interface {
	// UpdateStatus reports a lifecycle stage for a notification.
	UpdateStatus(ctx context.Context, notificationID string, s Status) error

	// SetDeviceToken registers the current push token of this device.
	SetDeviceToken(ctx context.Context, token string) error
}

// NopReporter accepts every call and only logs it at debug level.
// Used when no status service is configured.
type NopReporter struct {
	Logger *slog.Logger
}

func (n NopReporter) UpdateStatus(ctx context.Context, notificationID string, s Status) error {
	n.log().LogAttrs(ctx, slog.LevelDebug, "status report skipped: no status service",
		logger.NotificationID(notificationID),
		logger.Status(s),
	)
	return nil
}

func (n NopReporter) SetDeviceToken(ctx context.Context, token string) error {
	n.log().LogAttrs(ctx, slog.LevelDebug, "device token registration skipped: no status service")
	return nil
}

func (n NopReporter) log() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}
