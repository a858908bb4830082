package status

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/pushkit/pkg/logger"
)

// AsyncOptions configures the background worker of an AsyncReporter.
type AsyncOptions struct {
	BufferSize  int           // Max calls queued before new ones are dropped
	CallTimeout time.Duration // Upper bound for a single downstream call, retries included
	Logger      *slog.Logger
}

type call struct {
	ctx   context.Context
	name  string
	run   func(ctx context.Context) error
	attrs []slog.Attr
}

// AsyncReporter decorates a Reporter so that every call is executed on one
// background worker in submission order. Enqueueing never blocks: when the
// buffer is full the call is dropped and ErrQueueFull is returned.
type AsyncReporter struct {
	next    Reporter
	calls   chan call
	done    chan struct{}
	opts    AsyncOptions
	mu      sync.RWMutex
	closed  bool
	closeMu sync.Once
}

// NewAsyncReporter starts the worker. Call Close to drain and stop it.
func NewAsyncReporter(next Reporter, opts AsyncOptions) *AsyncReporter {
	if next == nil {
		panic("status: next reporter cannot be nil")
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 256
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &AsyncReporter{
		next:  next,
		calls: make(chan call, opts.BufferSize),
		done:  make(chan struct{}),
		opts:  opts,
	}
	go r.worker()

	return r
}

// UpdateStatus queues a status report.
func (r *AsyncReporter) UpdateStatus(ctx context.Context, notificationID string, s Status) error {
	return r.enqueue(call{
		ctx:   ctx,
		name:  "update status",
		attrs: []slog.Attr{logger.NotificationID(notificationID), logger.Status(s)},
		run: func(ctx context.Context) error {
			return r.next.UpdateStatus(ctx, notificationID, s)
		},
	})
}

// SetDeviceToken queues a device token registration.
func (r *AsyncReporter) SetDeviceToken(ctx context.Context, token string) error {
	return r.enqueue(call{
		ctx:  ctx,
		name: "set device token",
		run: func(ctx context.Context) error {
			return r.next.SetDeviceToken(ctx, token)
		},
	})
}

func (r *AsyncReporter) enqueue(c call) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrReporterClosed
	}

	select {
	case r.calls <- c:
		return nil
	default:
		r.opts.Logger.LogAttrs(c.ctx, slog.LevelWarn, "status call dropped: queue full",
			append([]slog.Attr{slog.String("call", c.name)}, c.attrs...)...,
		)
		return ErrQueueFull
	}
}

func (r *AsyncReporter) worker() {
	defer close(r.done)

	for c := range r.calls {
		// Detach from the caller: its request usually ends before the worker runs.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.ctx), r.opts.CallTimeout)
		err := c.run(ctx)
		cancel()

		if err != nil {
			r.opts.Logger.LogAttrs(ctx, slog.LevelWarn, "status call failed",
				append([]slog.Attr{slog.String("call", c.name), logger.Error(err)}, c.attrs...)...,
			)
		}
	}
}

// Close stops accepting calls and waits until queued ones are executed or ctx ends.
// Safe to call more than once.
func (r *AsyncReporter) Close(ctx context.Context) error {
	r.closeMu.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.calls)
		r.mu.Unlock()
	})

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
