// Package logger builds *slog.Logger instances for pushkit components and keeps
// attribute naming consistent across them.
//
// New creates a logger from functional options: output format (text or JSON),
// level, static attributes and ContextExtractor callbacks that pull request-scoped
// values out of context.Context on every record. WithEnvironment picks sensible
// defaults for development, staging and production.
//
// Attribute helpers such as NotificationID, Status, Style, URL and Error return
// an empty slog.Attr for empty input, so call sites do not need nil checks:
//
//	log := logger.New(logger.WithEnvironment("production", "pushkit"))
//	log.LogAttrs(ctx, slog.LevelWarn, "image fetch failed",
//	    logger.NotificationID(id),
//	    logger.URL(src),
//	    logger.Error(err),
//	)
package logger
