// Package imageloader fetches and decodes notification images.
//
// HTTPLoader handles http and https URLs with a per-fetch timeout, a body size
// limit and an optional rate limit. S3Loader handles s3://bucket/key URLs via
// the AWS SDK. SchemeLoader routes by URL scheme and CachedLoader adds an LRU
// cache with request coalescing on top of any Loader.
//
// PNG, JPEG, GIF and WebP are decoded.
//
//	http := imageloader.NewHTTPLoader(imageloader.WithTimeout(10 * time.Second))
//	loader := imageloader.NewCachedLoader(
//		imageloader.NewSchemeLoader(map[string]imageloader.Loader{"http": http, "https": http}),
//		128, 10*time.Minute,
//	)
//	img, err := loader.Load(ctx, "https://cdn.example.com/banner.png")
package imageloader
