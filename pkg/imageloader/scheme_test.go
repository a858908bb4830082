package imageloader_test

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/imageloader"
)

func TestSchemeLoader(t *testing.T) {
	t.Parallel()

	var hits []string
	named := func(name string) imageloader.Loader {
		return imageloader.LoaderFunc(func(ctx context.Context, url string) (image.Image, error) {
			hits = append(hits, name)
			return image.NewGray(image.Rect(0, 0, 1, 1)), nil
		})
	}

	l := imageloader.NewSchemeLoader(map[string]imageloader.Loader{
		"https": named("web"),
		"S3":    named("s3"),
		"file":  nil,
	})

	_, err := l.Load(context.Background(), "https://cdn/a.png")
	require.NoError(t, err)
	_, err = l.Load(context.Background(), "s3://bucket/a.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"web", "s3"}, hits)

	_, err = l.Load(context.Background(), "file:///etc/passwd")
	assert.ErrorIs(t, err, imageloader.ErrUnsupportedScheme)
	_, err = l.Load(context.Background(), "http://cdn/a.png")
	assert.ErrorIs(t, err, imageloader.ErrUnsupportedScheme)
}
