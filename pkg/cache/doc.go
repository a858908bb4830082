// Package cache provides a generic, thread-safe LRU cache with optional
// time-based expiry.
//
// The image loader uses it to keep recently decoded notification images so that
// repeated payloads referencing the same URL do not refetch them:
//
//	images := cache.NewLRUCache[string, image.Image](64, cache.WithTTL(10*time.Minute))
//	images.Put(url, img)
//	if img, ok := images.Get(url); ok {
//		// fresh hit
//	}
//
// Get, Put and Remove are O(1). Expired entries are removed lazily when they
// are next accessed; they still count towards capacity until then.
package cache
