package push

import (
	"context"
	"sync"
)

// Surface is the display queue that shows notifications to the user.
// Calls are made from a single goroutine (the render loop).
type Surface interface {
	// EnsureChannel registers ch. Repeated calls with the same channel must be harmless.
	EnsureChannel(ctx context.Context, ch Channel) error
	// Show displays n keyed by n.Handle.
	Show(ctx context.Context, n Notification) error
}

// MemorySurface keeps shown notifications in memory. Useful in tests and for
// hosts that poll instead of subscribing.
type MemorySurface struct {
	mu            sync.Mutex
	channels      map[string]Channel
	notifications []Notification
}

// NewMemorySurface creates an empty surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{channels: make(map[string]Channel)}
}

func (s *MemorySurface) EnsureChannel(_ context.Context, ch Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[ch.ID] = ch
	return nil
}

func (s *MemorySurface) Show(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

// Notifications returns shown notifications in order.
func (s *MemorySurface) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notifications...)
}

// Channels returns the registered channels keyed by id.
func (s *MemorySurface) Channels() map[string]Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Channel, len(s.channels))
	for k, v := range s.channels {
		out[k] = v
	}
	return out
}
