package imageloader

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of the S3 API used by S3Loader.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds credentials for s3:// image URLs.
type S3Config struct {
	Region         string `env:"S3_REGION"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`         // Optional: for S3-compatible services
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE"` // For MinIO and similar
}

// S3Loader fetches images addressed as s3://bucket/key.
type S3Loader struct {
	client    S3Client
	maxBytes  int64
	maxPixels int64
}

// S3Option configures an S3Loader.
type S3Option func(*s3Options)

type s3Options struct {
	client    S3Client
	maxBytes  int64
	maxPixels int64
}

// WithS3Client uses a pre-configured client instead of building one from S3Config.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.client = client
	}
}

// WithS3MaxPixels caps the decoded image size. Default is DefaultMaxPixels.
func WithS3MaxPixels(n int64) S3Option {
	return func(o *s3Options) {
		if n > 0 {
			o.maxPixels = n
		}
	}
}

// WithS3MaxBytes caps the object size. Default is DefaultMaxBytes.
func WithS3MaxBytes(n int64) S3Option {
	return func(o *s3Options) {
		if n > 0 {
			o.maxBytes = n
		}
	}
}

// NewS3Loader creates a loader for s3://bucket/key URLs. Without WithS3Client
// the client is built from cfg, which then needs a region.
func NewS3Loader(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Loader, error) {
	o := &s3Options{maxBytes: DefaultMaxBytes, maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(o)
	}

	if o.client != nil {
		return &S3Loader{client: o.client, maxBytes: o.maxBytes, maxPixels: o.maxPixels}, nil
	}

	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: S3 region is required", ErrInvalidConfig)
	}

	awsOptions := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		awsOptions = append(awsOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	client := s3.NewFromConfig(awsConfig, func(so *s3.Options) {
		if cfg.Endpoint != "" {
			so.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		so.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3Loader{client: client, maxBytes: o.maxBytes, maxPixels: o.maxPixels}, nil
}

// Load fetches the object named by rawURL and decodes it.
func (l *S3Loader) Load(ctx context.Context, rawURL string) (image.Image, error) {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return nil, err
	}

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error(err)
	}
	defer func() { _ = out.Body.Close() }()

	if out.ContentLength != nil && *out.ContentLength > l.maxBytes {
		return nil, fmt.Errorf("%w: object size %d", ErrTooLarge, *out.ContentLength)
	}

	return readAndDecode(out.Body, l.maxBytes, l.maxPixels)
}

func parseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: expected s3://bucket/key", ErrInvalidURL)
	}
	return u.Host, key, nil
}

func classifyS3Error(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case "AccessDenied":
			return fmt.Errorf("%w: %w", ErrAccessDenied, err)
		default:
			return fmt.Errorf("imageloader: s3 get object failed (code: %s): %w", apiErr.ErrorCode(), err)
		}
	}

	return fmt.Errorf("imageloader: s3 get object failed: %w", err)
}
