package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// NotificationID records the remote notification identifier under "notification_id".
// An empty id yields an empty Attr.
func NotificationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("notification_id", id)
}

// Handle records the surface handle of a rendered notification.
func Handle(h int64) slog.Attr {
	return slog.Int64("handle", h)
}

// Status records a lifecycle status under "status".
// Accepts any fmt.Stringer so callers do not need to convert.
func Status(s interface{ String() string }) slog.Attr {
	if s == nil {
		return slog.Attr{}
	}
	return slog.String("status", s.String())
}

// Style records the chosen notification style.
func Style(name string) slog.Attr {
	return slog.String("style", name)
}

// URL records a remote resource location under "url".
func URL(u string) slog.Attr {
	if u == "" {
		return slog.Attr{}
	}
	return slog.String("url", u)
}

// ClickAction records a deep-link target.
func ClickAction(target string) slog.Attr {
	if target == "" {
		return slog.Attr{}
	}
	return slog.String("click_action", target)
}

// Attempt records the delivery attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
