package imageloader_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/imageloader"
)

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func objectInput(bucket, key string) any {
	return mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == bucket && aws.ToString(in.Key) == key
	})
}

func TestS3Loader(t *testing.T) {
	t.Parallel()

	data := pngBytes(t, 3, 3)
	ctx := context.Background()

	t.Run("loads object", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		client.On("GetObject", mock.Anything, objectInput("media", "icons/a.png")).Return(&s3.GetObjectOutput{
			Body:          io.NopCloser(bytes.NewReader(data)),
			ContentLength: aws.Int64(int64(len(data))),
		}, nil)

		l, err := imageloader.NewS3Loader(ctx, imageloader.S3Config{}, imageloader.WithS3Client(client))
		require.NoError(t, err)

		img, err := l.Load(ctx, "s3://media/icons/a.png")
		require.NoError(t, err)
		assert.Equal(t, 3, img.Bounds().Dx())
		client.AssertExpectations(t)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{Message: aws.String("nope")})

		l, err := imageloader.NewS3Loader(ctx, imageloader.S3Config{}, imageloader.WithS3Client(client))
		require.NoError(t, err)

		_, err = l.Load(ctx, "s3://media/x.png")
		assert.ErrorIs(t, err, imageloader.ErrNotFound)
	})

	t.Run("access denied", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"})

		l, err := imageloader.NewS3Loader(ctx, imageloader.S3Config{}, imageloader.WithS3Client(client))
		require.NoError(t, err)

		_, err = l.Load(ctx, "s3://media/x.png")
		assert.ErrorIs(t, err, imageloader.ErrAccessDenied)
	})

	t.Run("object too large", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		client.On("GetObject", mock.Anything, mock.Anything).Return(&s3.GetObjectOutput{
			Body:          io.NopCloser(bytes.NewReader(data)),
			ContentLength: aws.Int64(1 << 30),
		}, nil)

		l, err := imageloader.NewS3Loader(ctx, imageloader.S3Config{}, imageloader.WithS3Client(client), imageloader.WithS3MaxBytes(1024))
		require.NoError(t, err)

		_, err = l.Load(ctx, "s3://media/x.png")
		assert.ErrorIs(t, err, imageloader.ErrTooLarge)
	})

	t.Run("dimensions over pixel limit", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		client.On("GetObject", mock.Anything, mock.Anything).Return(&s3.GetObjectOutput{
			Body: io.NopCloser(bytes.NewReader(data)),
		}, nil)

		l, err := imageloader.NewS3Loader(ctx, imageloader.S3Config{}, imageloader.WithS3Client(client), imageloader.WithS3MaxPixels(8))
		require.NoError(t, err)

		_, err = l.Load(ctx, "s3://media/icons/a.png")
		assert.ErrorIs(t, err, imageloader.ErrTooLarge)
	})

	t.Run("malformed url", func(t *testing.T) {
		t.Parallel()
		l, err := imageloader.NewS3Loader(ctx, imageloader.S3Config{}, imageloader.WithS3Client(new(MockS3Client)))
		require.NoError(t, err)

		_, err = l.Load(ctx, "s3://bucket-only")
		assert.ErrorIs(t, err, imageloader.ErrInvalidURL)
		_, err = l.Load(ctx, "https://media/x.png")
		assert.ErrorIs(t, err, imageloader.ErrUnsupportedScheme)
	})

	t.Run("region required without client", func(t *testing.T) {
		t.Parallel()
		_, err := imageloader.NewS3Loader(ctx, imageloader.S3Config{})
		assert.ErrorIs(t, err, imageloader.ErrInvalidConfig)
	})
}
