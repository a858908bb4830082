package push

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"
)

// BuilderConfig holds the static parts of every notification.
type BuilderConfig struct {
	SmallIcon string
	Channel   Channel
}

// Builder assembles notifications and submits them to a Surface.
// Render is expected to run on one goroutine; Build is pure.
type Builder struct {
	surface   Surface
	smallIcon string
	channel   Channel
	handles   *HandleGenerator
	now       func() time.Time

	mu             sync.Mutex
	channelEnsured bool
}

// NewBuilder validates cfg, filling the default icon and channel when empty.
func NewBuilder(surface Surface, cfg BuilderConfig) (*Builder, error) {
	if surface == nil {
		return nil, ErrNilSurface
	}

	icon := strings.TrimSpace(cfg.SmallIcon)
	if icon == "" {
		icon = DefaultSmallIcon
	}

	ch := cfg.Channel
	if ch == (Channel{}) {
		ch = DefaultChannel()
	}
	if ch.Importance == 0 {
		ch.Importance = ImportanceDefault
	}
	if err := ch.validate(); err != nil {
		return nil, err
	}

	return &Builder{
		surface:   surface,
		smallIcon: icon,
		channel:   ch,
		handles:   NewHandleGenerator(),
		now:       time.Now,
	}, nil
}

// Channel returns the channel notifications are posted to.
func (b *Builder) Channel() Channel { return b.channel }

// Build assembles a notification with click and dismiss callbacks bound to id.
// The handle is assigned by Render.
func (b *Builder) Build(id, title, body, clickAction string, thumbnail image.Image, style Style) Notification {
	if style == nil {
		style = PlainText{Body: body}
	}
	return Notification{
		ID:         id,
		Title:      title,
		Body:       body,
		ChannelID:  b.channel.ID,
		SmallIcon:  b.smallIcon,
		Thumbnail:  thumbnail,
		Style:      style,
		AutoCancel: true,
		Click:      Event{Kind: EventClick, NotificationID: id, ClickAction: clickAction},
		Dismiss:    Event{Kind: EventDismiss, NotificationID: id},
		CreatedAt:  b.now(),
	}
}

// Render registers the channel on first use and shows n under a fresh handle.
// It returns the handle the notification was shown with.
func (b *Builder) Render(ctx context.Context, n Notification) (Handle, error) {
	if err := b.ensureChannel(ctx); err != nil {
		return 0, err
	}

	n.Handle = b.handles.Next()
	if err := b.surface.Show(ctx, n); err != nil {
		return n.Handle, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return n.Handle, nil
}

func (b *Builder) ensureChannel(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.channelEnsured {
		return nil
	}
	if err := b.surface.EnsureChannel(ctx, b.channel); err != nil {
		return fmt.Errorf("%w: %w", ErrChannelSetup, err)
	}
	b.channelEnsured = true
	return nil
}
