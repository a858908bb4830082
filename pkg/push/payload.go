package push

// Payload keys understood by the pipeline.
const (
	KeyNotificationID = "notification_id"
	KeyTitle          = "title"
	KeyBody           = "body"
	KeyClickAction    = "click_action"
	KeyLargeIcon      = "large_icon"
	KeyBigPicture     = "big_picture"
)

// Payload is the string-keyed data map delivered with a push message.
// Every key is optional; empty values are treated as absent.
type Payload map[string]string

// IsEmpty reports whether the payload carries no data at all.
func (p Payload) IsEmpty() bool { return len(p) == 0 }

// ID returns the notification id used for status reports.
func (p Payload) ID() string { return p[KeyNotificationID] }

// Title returns the notification title.
func (p Payload) Title() string { return p[KeyTitle] }

// Body returns the notification text.
func (p Payload) Body() string { return p[KeyBody] }

// ClickAction returns the deep link opened on click.
func (p Payload) ClickAction() string { return p[KeyClickAction] }

// LargeIcon returns the URL of the thumbnail image.
func (p Payload) LargeIcon() string { return p[KeyLargeIcon] }

// BigPicture returns the URL of the expanded picture.
func (p Payload) BigPicture() string { return p[KeyBigPicture] }
