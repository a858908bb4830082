package async

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Loop runs submitted tasks one at a time on a single goroutine.
// It plays the role of a UI-bound context: code posted to the same Loop
// never runs concurrently with itself, so it may touch confined state
// without additional locking.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewLoop starts a loop with the given queue capacity.
// A capacity below 1 is raised to 1.
func NewLoop(capacity int) *Loop {
	l := &Loop{
		tasks: make(chan func(), max(capacity, 1)),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for task := range l.tasks {
		l.exec(task)
	}
}

// exec keeps the loop alive when a posted task panics.
func (l *Loop) exec(task func()) {
	defer func() { _ = recover() }()
	task()
}

// Post enqueues fn without waiting for it to run.
// It blocks only while the queue is full.
func (l *Loop) Post(fn func()) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return ErrLoopClosed
	}
	l.tasks <- fn
	return nil
}

// Do runs fn on the loop and waits for it to return.
//
// If ctx ends while fn is still queued, fn is skipped and Do returns the
// context error, so a context error always means fn never ran. Once fn has
// started, Do waits for its result; fn observes ctx itself.
func (l *Loop) Do(ctx context.Context, fn func(context.Context) error) error {
	const (
		queued int32 = iota
		running
		skipped
	)
	var state atomic.Int32
	result := make(chan error, 1)

	err := l.Post(func() {
		if ctx.Err() != nil || !state.CompareAndSwap(queued, running) {
			state.Store(skipped)
			return
		}
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		result <- fn(ctx)
	})
	if err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		if state.CompareAndSwap(queued, skipped) {
			return ctx.Err()
		}
		if state.Load() == skipped {
			return ctx.Err()
		}
		return <-result
	}
}

// Close stops accepting tasks, drains the queue and waits for the loop goroutine.
// It is safe to call more than once.
func (l *Loop) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.tasks)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
