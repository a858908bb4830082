// Package statustest provides an in-memory status.Reporter for tests.
package statustest

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/pushkit/pkg/status"
)

// Report is one recorded UpdateStatus call.
type Report struct {
	NotificationID string
	Status         status.Status
}

// Recorder records every call it receives. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
	tokens  []string
	err     error
	changed chan struct{}
}

// NewRecorder creates a recorder that accepts every call.
func NewRecorder() *Recorder {
	return &Recorder{changed: make(chan struct{}, 1)}
}

// FailWith makes subsequent calls return err after recording them.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

func (r *Recorder) UpdateStatus(_ context.Context, notificationID string, s status.Status) error {
	r.mu.Lock()
	r.reports = append(r.reports, Report{NotificationID: notificationID, Status: s})
	err := r.err
	r.mu.Unlock()
	r.notify()
	return err
}

func (r *Recorder) SetDeviceToken(_ context.Context, token string) error {
	r.mu.Lock()
	r.tokens = append(r.tokens, token)
	err := r.err
	r.mu.Unlock()
	r.notify()
	return err
}

// Reports returns a copy of recorded status reports in call order.
func (r *Recorder) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Report(nil), r.reports...)
}

// Tokens returns a copy of recorded device tokens in call order.
func (r *Recorder) Tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tokens...)
}

// WaitReports blocks until at least n reports were recorded or timeout expires.
// It returns whatever was recorded.
func (r *Recorder) WaitReports(n int, timeout time.Duration) []Report {
	deadline := time.After(timeout)
	for {
		if got := r.Reports(); len(got) >= n {
			return got
		}
		select {
		case <-r.changed:
		case <-deadline:
			return r.Reports()
		}
	}
}

func (r *Recorder) notify() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}
