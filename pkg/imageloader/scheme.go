package imageloader

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"
)

// SchemeLoader routes a URL to the loader registered for its scheme.
type SchemeLoader struct {
	routes map[string]Loader
}

// NewSchemeLoader creates a router from scheme → loader pairs, e.g.
// {"http": h, "https": h, "s3": s}. Nil loaders are skipped.
func NewSchemeLoader(routes map[string]Loader) *SchemeLoader {
	s := &SchemeLoader{routes: make(map[string]Loader, len(routes))}
	for scheme, l := range routes {
		if l != nil {
			s.routes[strings.ToLower(scheme)] = l
		}
	}
	return s
}

// Load delegates to the loader registered for the URL scheme.
func (s *SchemeLoader) Load(ctx context.Context, rawURL string) (image.Image, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	l, ok := s.routes[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	return l.Load(ctx, rawURL)
}
