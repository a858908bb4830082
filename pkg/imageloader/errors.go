package imageloader

import "errors"

var (
	ErrUnsupportedScheme = errors.New("imageloader: unsupported URL scheme")
	ErrInvalidURL        = errors.New("imageloader: invalid image URL")
	ErrInvalidConfig     = errors.New("imageloader: invalid configuration")
	ErrBadStatus         = errors.New("imageloader: unexpected response status")
	ErrNotFound          = errors.New("imageloader: image not found")
	ErrTooLarge          = errors.New("imageloader: image exceeds size limit")
	ErrDecode            = errors.New("imageloader: failed to decode image")
	ErrAccessDenied      = errors.New("imageloader: access denied")
)
