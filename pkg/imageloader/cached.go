package imageloader

import (
	"context"
	"image"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/pushkit/pkg/cache"
)

// DefaultSharedLoadTimeout bounds a load shared by concurrent callers.
const DefaultSharedLoadTimeout = 30 * time.Second

// CachedLoader keeps decoded images in an LRU cache and collapses concurrent
// loads of the same URL into one fetch. Failures are not cached.
//
// The shared fetch is detached from any single caller's cancellation, so a
// caller that gives up does not fail the others waiting on the same URL.
// Each caller still returns as soon as its own context ends.
type CachedLoader struct {
	next    Loader
	cache   *cache.LRUCache[string, image.Image]
	group   singleflight.Group
	timeout time.Duration
}

// CachedOption configures a CachedLoader.
type CachedOption func(*CachedLoader)

// WithSharedLoadTimeout bounds the detached fetch. Default is DefaultSharedLoadTimeout.
func WithSharedLoadTimeout(d time.Duration) CachedOption {
	return func(c *CachedLoader) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewCachedLoader caches up to capacity images for ttl (zero keeps them until evicted).
func NewCachedLoader(next Loader, capacity int, ttl time.Duration, opts ...CachedOption) *CachedLoader {
	if capacity <= 0 {
		capacity = 64
	}
	c := &CachedLoader{
		next:    next,
		cache:   cache.NewLRUCache[string, image.Image](capacity, cache.WithTTL(ttl)),
		timeout: DefaultSharedLoadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the cached image for url or joins the in-flight fetch of it.
func (c *CachedLoader) Load(ctx context.Context, url string) (image.Image, error) {
	if img, ok := c.cache.Get(url); ok {
		return img, nil
	}

	ch := c.group.DoChan(url, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		img, err := c.next.Load(loadCtx, url)
		if err != nil {
			return nil, err
		}
		c.cache.Put(url, img)
		return img, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of cached images.
func (c *CachedLoader) Len() int {
	return c.cache.Len()
}
