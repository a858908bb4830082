package push

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"net/url"
	"strings"
	"sync"
	"time"
)

// StreamEventType tags events published by a StreamSurface.
type StreamEventType string

const (
	StreamNotification StreamEventType = "notification"
	StreamLaunch       StreamEventType = "launch"
)

// StreamEvent is one message delivered to stream subscribers.
type StreamEvent struct {
	Type         StreamEventType   `json:"type"`
	Notification *NotificationView `json:"notification,omitempty"`
	Intent       *Intent           `json:"intent,omitempty"`
}

// NotificationView is the wire form of a rendered notification. Images are
// inlined as PNG data URLs; callbacks are URLs the client calls on click or dismiss.
type NotificationView struct {
	Handle         int64     `json:"handle"`
	NotificationID string    `json:"notification_id,omitempty"`
	Title          string    `json:"title,omitempty"`
	Body           string    `json:"body,omitempty"`
	ChannelID      string    `json:"channel_id"`
	SmallIcon      string    `json:"small_icon"`
	Style          string    `json:"style"`
	Thumbnail      string    `json:"thumbnail,omitempty"`
	Picture        string    `json:"picture,omitempty"`
	AutoCancel     bool      `json:"auto_cancel"`
	ClickURL       string    `json:"click_url"`
	DismissURL     string    `json:"dismiss_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// StreamOption configures a StreamSurface.
type StreamOption func(*StreamSurface)

// WithCallbackBase sets the path prefix of click and dismiss URLs. Default "/callbacks".
func WithCallbackBase(base string) StreamOption {
	return func(s *StreamSurface) {
		s.callbackBase = strings.TrimRight(base, "/")
	}
}

// WithStreamBuffer sets the per-subscriber buffer. Default 16.
func WithStreamBuffer(n int) StreamOption {
	return func(s *StreamSurface) {
		s.buffer = max(n, 1)
	}
}

// StreamSurface publishes rendered notifications and launch intents to
// subscribers, e.g. browser clients over SSE. A subscriber whose buffer is
// full is dropped instead of blocking the render loop.
// It implements both Surface and Launcher.
type StreamSurface struct {
	mu           sync.Mutex
	subscribers  map[chan StreamEvent]struct{}
	channels     map[string]Channel
	buffer       int
	callbackBase string
	closed       bool
}

// NewStreamSurface creates a surface with no subscribers.
func NewStreamSurface(opts ...StreamOption) *StreamSurface {
	s := &StreamSurface{
		subscribers:  make(map[chan StreamEvent]struct{}),
		channels:     make(map[string]Channel),
		buffer:       16,
		callbackBase: "/callbacks",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe returns a channel of events that is closed when ctx ends, when the
// subscriber falls behind, or when the surface is closed.
func (s *StreamSurface) Subscribe(ctx context.Context) <-chan StreamEvent {
	ch := make(chan StreamEvent, s.buffer)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			s.unsubscribe(ch)
		}()
	}

	return ch
}

// Subscribers returns the number of active subscribers.
func (s *StreamSurface) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func (s *StreamSurface) EnsureChannel(_ context.Context, ch Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSurfaceClosed
	}
	s.channels[ch.ID] = ch
	return nil
}

func (s *StreamSurface) Show(_ context.Context, n Notification) error {
	view := s.view(n)
	return s.publish(StreamEvent{Type: StreamNotification, Notification: &view})
}

// Launch forwards a deep link to subscribers, which open it client side.
func (s *StreamSurface) Launch(_ context.Context, in Intent) error {
	return s.publish(StreamEvent{Type: StreamLaunch, Intent: &in})
}

// Close closes every subscriber. Later Show and Launch calls fail with ErrSurfaceClosed.
func (s *StreamSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	for ch := range s.subscribers {
		close(ch)
	}
	clear(s.subscribers)
	return nil
}

func (s *StreamSurface) publish(ev StreamEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSurfaceClosed
	}
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			delete(s.subscribers, ch)
			close(ch)
		}
	}
	return nil
}

func (s *StreamSurface) unsubscribe(ch chan StreamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *StreamSurface) view(n Notification) NotificationView {
	v := NotificationView{
		Handle:         int64(n.Handle),
		NotificationID: n.ID,
		Title:          n.Title,
		Body:           n.Body,
		ChannelID:      n.ChannelID,
		SmallIcon:      n.SmallIcon,
		Thumbnail:      dataURL(n.Thumbnail),
		AutoCancel:     n.AutoCancel,
		ClickURL:       s.callbackURL(n.Click),
		DismissURL:     s.callbackURL(n.Dismiss),
		CreatedAt:      n.CreatedAt,
	}
	if n.Style != nil {
		v.Style = n.Style.Kind().String()
		if bp, ok := n.Style.(BigPicture); ok {
			v.Picture = dataURL(bp.Picture)
		}
	}
	return v
}

func (s *StreamSurface) callbackURL(ev Event) string {
	q := url.Values{}
	if ev.NotificationID != "" {
		q.Set(KeyNotificationID, ev.NotificationID)
	}
	if ev.ClickAction != "" {
		q.Set(KeyClickAction, ev.ClickAction)
	}
	u := s.callbackBase + "/" + string(ev.Kind)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func dataURL(img image.Image) string {
	if img == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
