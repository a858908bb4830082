package push

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/status"
)

// Intent is a request to open a deep link. BackStack lists the screens that
// must sit under Target, root first, so "back" navigates inside the app.
type Intent struct {
	Target    string   `json:"target"`
	BackStack []string `json:"back_stack,omitempty"`
}

// Launcher opens deep links.
type Launcher interface {
	Launch(ctx context.Context, in Intent) error
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, in Intent) error

func (f LauncherFunc) Launch(ctx context.Context, in Intent) error { return f(ctx, in) }

// TaskStack knows the parent of each deep link target.
type TaskStack struct {
	parents map[string]string
}

// NewTaskStack builds a stack from child → parent pairs.
func NewTaskStack(parents map[string]string) *TaskStack {
	p := make(map[string]string, len(parents))
	for k, v := range parents {
		p[k] = v
	}
	return &TaskStack{parents: p}
}

// Intent returns a launch intent for target with its parent chain as back stack.
// A nil TaskStack yields an intent without back stack.
func (s *TaskStack) Intent(target string) Intent {
	in := Intent{Target: target}
	if s == nil {
		return in
	}

	seen := map[string]bool{target: true}
	for cur := s.parents[target]; cur != "" && !seen[cur]; cur = s.parents[cur] {
		seen[cur] = true
		in.BackStack = append([]string{cur}, in.BackStack...)
	}
	return in
}

// ReceiverOption configures click and dismiss receivers.
type ReceiverOption func(*receiverOptions)

type receiverOptions struct {
	logger  *slog.Logger
	metrics *Metrics
	stack   *TaskStack
}

// WithReceiverLogger sets the receiver logger. Default is slog.Default().
func WithReceiverLogger(l *slog.Logger) ReceiverOption {
	return func(o *receiverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithReceiverMetrics counts events and status reports. Nil disables them.
func WithReceiverMetrics(m *Metrics) ReceiverOption {
	return func(o *receiverOptions) { o.metrics = m }
}

// WithTaskStack sets the parent chain used to build click intents.
func WithTaskStack(s *TaskStack) ReceiverOption {
	return func(o *receiverOptions) { o.stack = s }
}

func newReceiverOptions(opts []ReceiverOption) receiverOptions {
	o := receiverOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ClickReceiver handles taps on rendered notifications.
type ClickReceiver struct {
	reporter status.Reporter
	launcher Launcher
	opts     receiverOptions
}

// NewClickReceiver creates a receiver. A nil launcher disables deep links.
func NewClickReceiver(reporter status.Reporter, launcher Launcher, opts ...ReceiverOption) *ClickReceiver {
	if reporter == nil {
		reporter = status.NopReporter{}
	}
	return &ClickReceiver{reporter: reporter, launcher: launcher, opts: newReceiverOptions(opts)}
}

// Receive launches the click action, if any, and reports CLICKED whenever the
// event carries a notification id. A launch failure is returned after the
// status has been reported.
func (r *ClickReceiver) Receive(ctx context.Context, ev Event) error {
	log := r.opts.logger.With(logger.Component("click_receiver"))

	var launchErr error
	if ev.ClickAction != "" && r.launcher != nil {
		in := r.opts.stack.Intent(ev.ClickAction)
		if err := r.launcher.Launch(ctx, in); err != nil {
			launchErr = fmt.Errorf("%w: %w", ErrLaunchFailed, err)
			log.LogAttrs(ctx, slog.LevelWarn, "failed to launch click action",
				logger.NotificationID(ev.NotificationID),
				logger.ClickAction(ev.ClickAction),
				logger.Error(err),
			)
		}
	}

	if ev.NotificationID != "" {
		reportStatus(ctx, log, r.reporter, r.opts.metrics, ev.NotificationID, status.Clicked)
	}
	r.opts.metrics.event(EventClick)

	return launchErr
}

// DismissReceiver handles notifications swiped away by the user.
type DismissReceiver struct {
	reporter status.Reporter
	opts     receiverOptions
}

// NewDismissReceiver creates a receiver. A nil reporter reports nothing.
func NewDismissReceiver(reporter status.Reporter, opts ...ReceiverOption) *DismissReceiver {
	if reporter == nil {
		reporter = status.NopReporter{}
	}
	return &DismissReceiver{reporter: reporter, opts: newReceiverOptions(opts)}
}

// Receive reports DISMISSED when the event carries a notification id.
func (r *DismissReceiver) Receive(ctx context.Context, ev Event) error {
	if ev.NotificationID != "" {
		log := r.opts.logger.With(logger.Component("dismiss_receiver"))
		reportStatus(ctx, log, r.reporter, r.opts.metrics, ev.NotificationID, status.Dismissed)
	}
	r.opts.metrics.event(EventDismiss)
	return nil
}

// reportStatus is best effort: failures are logged and counted, never returned.
func reportStatus(ctx context.Context, log *slog.Logger, rep status.Reporter, m *Metrics, id string, s status.Status) {
	if err := rep.UpdateStatus(ctx, id, s); err != nil {
		m.statusReport(s, false)
		log.LogAttrs(ctx, slog.LevelWarn, "failed to report notification status",
			logger.NotificationID(id),
			logger.Status(s),
			logger.Error(err),
		)
		return
	}
	m.statusReport(s, true)
	log.LogAttrs(ctx, slog.LevelDebug, "notification status reported",
		logger.NotificationID(id),
		logger.Status(s),
	)
}
