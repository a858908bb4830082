package push

import "image"

// StyleKind identifies the visual layout of a notification.
type StyleKind int

const (
	KindPlainText StyleKind = iota
	KindBigPicture
	KindLargeIconOnly
)

func (k StyleKind) String() string {
	switch k {
	case KindPlainText:
		return "plain_text"
	case KindBigPicture:
		return "big_picture"
	case KindLargeIconOnly:
		return "large_icon"
	default:
		return "unknown"
	}
}

// Style is the final, immutable visual variant of a notification.
// The set of implementations is closed: PlainText, BigPicture, LargeIconOnly.
type Style interface {
	Kind() StyleKind
	sealed()
}

// PlainText shows the body as expanded text.
type PlainText struct {
	Body string
}

// BigPicture shows Picture when expanded. LargeIcon replaces the thumbnail in
// the expanded view; nil hides it.
type BigPicture struct {
	Picture   image.Image
	LargeIcon image.Image
}

// LargeIconOnly shows the body as expanded text with Icon as the thumbnail.
type LargeIconOnly struct {
	Body string
	Icon image.Image
}

func (PlainText) Kind() StyleKind     { return KindPlainText }
func (BigPicture) Kind() StyleKind    { return KindBigPicture }
func (LargeIconOnly) Kind() StyleKind { return KindLargeIconOnly }

func (PlainText) sealed()     {}
func (BigPicture) sealed()    {}
func (LargeIconOnly) sealed() {}

// Plan is the style decision made before any image is fetched.
type Plan struct {
	Kind          StyleKind
	Body          string
	LargeIconURL  string
	BigPictureURL string
}

// Fetches returns the image URLs that must be loaded before rendering.
func (p Plan) Fetches() []string {
	urls := make([]string, 0, 2)
	if p.LargeIconURL != "" {
		urls = append(urls, p.LargeIconURL)
	}
	if p.BigPictureURL != "" {
		urls = append(urls, p.BigPictureURL)
	}
	return urls
}

// SelectStyle chooses the layout from the optional image URLs:
//
//	icon + picture -> BigPicture, icon as thumbnail (2 fetches)
//	picture only   -> BigPicture, no thumbnail      (1 fetch)
//	icon only      -> LargeIconOnly                 (1 fetch)
//	neither        -> PlainText                     (no fetch)
func SelectStyle(largeIconURL, bigPictureURL, body string) Plan {
	p := Plan{Body: body, LargeIconURL: largeIconURL, BigPictureURL: bigPictureURL}
	switch {
	case bigPictureURL != "":
		p.Kind = KindBigPicture
	case largeIconURL != "":
		p.Kind = KindLargeIconOnly
	default:
		p.Kind = KindPlainText
	}
	return p
}

// Finalize builds the style from fetched images and returns the thumbnail.
// A nil image means the fetch was not requested or failed; a missing big
// picture degrades to the text layout instead of an empty expanded view.
func (p Plan) Finalize(icon, picture image.Image) (Style, image.Image) {
	switch p.Kind {
	case KindBigPicture:
		if picture != nil {
			return BigPicture{Picture: picture}, icon
		}
		if icon != nil {
			return LargeIconOnly{Body: p.Body, Icon: icon}, icon
		}
	case KindLargeIconOnly:
		if icon != nil {
			return LargeIconOnly{Body: p.Body, Icon: icon}, icon
		}
	}
	return PlainText{Body: p.Body}, nil
}
