package push

import (
	"image"
	"strings"
	"time"
)

// Importance mirrors the interruption level of a notification channel.
type Importance int

const (
	ImportanceLow Importance = iota + 1
	ImportanceDefault
	ImportanceHigh
)

// Default channel used when none is configured.
const (
	DefaultChannelID   = "Default"
	DefaultChannelName = "Default Channel"
	DefaultSmallIcon   = "ic_stat_notification"
)

// Channel groups notifications on surfaces that require registration first.
type Channel struct {
	ID         string
	Name       string
	Importance Importance
}

// DefaultChannel returns the channel used when none is configured.
func DefaultChannel() Channel {
	return Channel{ID: DefaultChannelID, Name: DefaultChannelName, Importance: ImportanceDefault}
}

func (c Channel) validate() error {
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
		return ErrInvalidChannel
	}
	return nil
}

// EventKind distinguishes the two user interactions with a notification.
type EventKind string

const (
	EventClick   EventKind = "click"
	EventDismiss EventKind = "dismiss"
)

// Event is the callback a surface delivers back when the user acts on a
// notification. It carries everything the receivers need, so they stay stateless.
type Event struct {
	Kind           EventKind `json:"kind"`
	NotificationID string    `json:"notification_id,omitempty"`
	ClickAction    string    `json:"click_action,omitempty"`
}

// Notification is a fully assembled notification ready for a Surface.
type Notification struct {
	Handle     Handle
	ID         string
	Title      string
	Body       string
	ChannelID  string
	SmallIcon  string
	Thumbnail  image.Image
	Style      Style
	AutoCancel bool
	Click      Event
	Dismiss    Event
	CreatedAt  time.Time
}
