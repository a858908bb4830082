package pushkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/pushkit/pkg/async"
	"github.com/dmitrymomot/pushkit/pkg/imageloader"
	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/push"
	"github.com/dmitrymomot/pushkit/pkg/pushhttp"
	"github.com/dmitrymomot/pushkit/pkg/status"
)

// Option overrides a part of the assembled Kit.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	surface  push.Surface
	launcher push.Launcher
	loader   imageloader.Loader
	reporter status.Reporter
	redis    redis.UniversalClient
	s3       imageloader.S3Client
	registry *prometheus.Registry
}

// WithLogger replaces the logger built from Config.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSurface renders to s instead of the built-in stream surface. When s also
// implements push.Launcher it opens deep links as well.
func WithSurface(s push.Surface) Option {
	return func(o *options) { o.surface = s }
}

// WithLauncher sets how deep links are opened.
func WithLauncher(l push.Launcher) Option {
	return func(o *options) { o.launcher = l }
}

// WithLoader replaces the image loader chain.
func WithLoader(l imageloader.Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithReporter replaces the HTTP status reporter. It is still wrapped in the
// async worker.
func WithReporter(r status.Reporter) Option {
	return func(o *options) { o.reporter = r }
}

// WithRedisClient reuses an existing client for the redis token store.
func WithRedisClient(c redis.UniversalClient) Option {
	return func(o *options) { o.redis = c }
}

// WithS3Client serves s3:// image URLs through c.
func WithS3Client(c imageloader.S3Client) Option {
	return func(o *options) { o.s3 = c }
}

// WithRegistry collects metrics into reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// Kit is the assembled notification service.
type Kit struct {
	Config       Config
	Logger       *slog.Logger
	Registry     *prometheus.Registry
	Metrics      *push.Metrics
	Service      *push.Service
	Click        *push.ClickReceiver
	Dismiss      *push.DismissReceiver
	Reporter     *status.AsyncReporter
	Stream       *push.StreamSurface // nil when a custom surface is used
	Capabilities push.Capabilities

	loop      *async.Loop
	redis     redis.UniversalClient
	ownsRedis bool
	health    []func(context.Context) error
	handler   http.Handler
}

// New validates cfg and wires every component.
func New(ctx context.Context, cfg Config, opts ...Option) (*Kit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pushkit: invalid config: %w", err)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	k := &Kit{
		Config:       cfg,
		Logger:       o.logger,
		Registry:     o.registry,
		Capabilities: push.StaticCapabilities{Restricted: cfg.BackgroundRestricted},
	}
	if k.Logger == nil {
		k.Logger = cfg.NewLogger(logger.WithContextValue("request_id", middleware.RequestIDKey))
	}
	if k.Registry == nil {
		k.Registry = prometheus.NewRegistry()
		k.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	k.Metrics = push.NewMetrics(k.Registry)

	reporter, err := k.buildReporter(ctx, o)
	if err != nil {
		return nil, err
	}
	k.Reporter = status.NewAsyncReporter(reporter, status.AsyncOptions{
		BufferSize: cfg.StatusQueueSize,
		Logger:     k.Logger.With(logger.Component("status")),
	})

	loader, err := k.buildLoader(ctx, o)
	if err != nil {
		return nil, errors.Join(err, k.closeReporting(ctx))
	}

	surface, launcher := o.surface, o.launcher
	if surface == nil {
		k.Stream = push.NewStreamSurface(push.WithCallbackBase(cfg.CallbackBase))
		surface = k.Stream
	}
	if launcher == nil {
		if l, ok := surface.(push.Launcher); ok {
			launcher = l
		}
	}

	builder, err := push.NewBuilder(surface, push.BuilderConfig{SmallIcon: cfg.SmallIcon, Channel: cfg.Channel()})
	if err != nil {
		return nil, errors.Join(err, k.closeReporting(ctx))
	}

	k.loop = async.NewLoop(cfg.RenderQueue)
	k.Service, err = push.NewService(k.Reporter, loader, builder,
		push.WithLogger(k.Logger),
		push.WithLoop(k.loop),
		push.WithMetrics(k.Metrics),
		push.WithFetchTimeout(cfg.FetchTimeout),
	)
	if err != nil {
		return nil, errors.Join(err, k.loop.Close(ctx), k.closeReporting(ctx))
	}

	receiverOpts := []push.ReceiverOption{
		push.WithReceiverLogger(k.Logger),
		push.WithReceiverMetrics(k.Metrics),
	}
	if len(cfg.DeepLinkParents) > 0 {
		receiverOpts = append(receiverOpts, push.WithTaskStack(push.NewTaskStack(cfg.DeepLinkParents)))
	}
	k.Click = push.NewClickReceiver(k.Reporter, launcher, receiverOpts...)
	k.Dismiss = push.NewDismissReceiver(k.Reporter, receiverOpts...)

	if push.IsAppRestricted(k.Capabilities) {
		k.Logger.WarnContext(ctx, "background work is restricted; notifications may be delayed")
	}

	return k, nil
}

// Handler returns the HTTP API, built on first use.
func (k *Kit) Handler() http.Handler {
	if k.handler == nil {
		k.handler = pushhttp.NewRouter(pushhttp.Handlers{
			Pipeline:     k.Service,
			Click:        k.Click,
			Dismiss:      k.Dismiss,
			Stream:       k.Stream,
			Metrics:      promhttp.HandlerFor(k.Registry, promhttp.HandlerOpts{Registry: k.Registry}),
			HealthChecks: k.health,
			Logger:       k.Logger,
		})
	}
	return k.handler
}

// Run serves the HTTP API until ctx ends, then closes the kit.
func (k *Kit) Run(ctx context.Context) error {
	srv := pushhttp.NewFromConfig(k.Config.HTTP, pushhttp.WithLogger(k.Logger))
	runErr := srv.Run(ctx, k.Handler())

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.Config.HTTP.ShutdownTimeout+5*time.Second)
	defer cancel()

	return errors.Join(runErr, k.Close(closeCtx))
}

// Close drains in-flight messages and queued status reports, then releases
// the render loop, stream subscribers and the Redis connection.
func (k *Kit) Close(ctx context.Context) error {
	var errs []error
	if k.Service != nil {
		errs = append(errs, k.Service.Close(ctx))
	}
	if k.loop != nil {
		errs = append(errs, k.loop.Close(ctx))
	}
	if k.Stream != nil {
		errs = append(errs, k.Stream.Close())
	}
	errs = append(errs, k.closeReporting(ctx))
	return errors.Join(errs...)
}

func (k *Kit) closeReporting(ctx context.Context) error {
	var errs []error
	if k.Reporter != nil {
		errs = append(errs, k.Reporter.Close(ctx))
	}
	if k.redis != nil && k.ownsRedis {
		errs = append(errs, k.redis.Close())
		k.ownsRedis = false
	}
	return errors.Join(errs...)
}

func (k *Kit) buildReporter(ctx context.Context, o *options) (status.Reporter, error) {
	if o.reporter != nil {
		return o.reporter, nil
	}
	cfg := k.Config
	log := k.Logger.With(logger.Component("status"))

	if cfg.StatusURL == "" {
		log.InfoContext(ctx, "no status service configured; lifecycle reports are dropped")
		return status.NopReporter{Logger: log}, nil
	}

	store, err := k.buildTokenStore(ctx, o)
	if err != nil {
		return nil, err
	}

	httpOpts := []status.HTTPOption{
		status.WithTokenStore(store),
		status.WithTimeout(cfg.StatusTimeout),
		status.WithMaxRetries(cfg.StatusMaxRetries),
		status.WithSigningSecret(cfg.StatusSecret),
		status.WithLogger(log),
	}
	if cfg.StatusAPIKey != "" {
		httpOpts = append(httpOpts, status.WithHeader("Authorization", "Bearer "+cfg.StatusAPIKey))
	}
	if cfg.StatusCircuitThreshold > 0 {
		httpOpts = append(httpOpts, status.WithCircuitBreaker(
			status.NewCircuitBreaker(cfg.StatusCircuitThreshold, 2, cfg.StatusCircuitRecovery),
		))
	}

	rep, err := status.NewHTTPReporter(cfg.StatusURL, httpOpts...)
	if err != nil {
		return nil, errors.Join(err, k.closeReporting(ctx))
	}
	return rep, nil
}

func (k *Kit) buildTokenStore(ctx context.Context, o *options) (status.TokenStore, error) {
	if k.Config.TokenStore != TokenStoreRedis {
		return status.NewMemoryTokenStore(), nil
	}

	client := o.redis
	if client == nil {
		c, err := status.ConnectRedis(ctx, k.Config.Redis)
		if err != nil {
			return nil, fmt.Errorf("pushkit: connect redis: %w", err)
		}
		client = c
		k.ownsRedis = true
	}
	k.redis = client
	k.health = append(k.health, status.RedisHealthcheck(client))

	return status.NewRedisTokenStore(client, k.Config.Redis.TokenKey), nil
}

func (k *Kit) buildLoader(ctx context.Context, o *options) (imageloader.Loader, error) {
	if o.loader != nil {
		return o.loader, nil
	}
	cfg := k.Config

	httpLoader := imageloader.NewHTTPLoader(
		imageloader.WithTimeout(cfg.FetchTimeout),
		imageloader.WithMaxBytes(cfg.ImageMaxBytes),
		imageloader.WithMaxPixels(cfg.ImageMaxPixels),
		imageloader.WithRateLimit(cfg.ImageRateLimit, cfg.ImageRateBurst),
	)
	routes := map[string]imageloader.Loader{"http": httpLoader, "https": httpLoader}

	if o.s3 != nil || cfg.S3.Region != "" {
		var s3Opts []imageloader.S3Option
		if o.s3 != nil {
			s3Opts = append(s3Opts, imageloader.WithS3Client(o.s3))
		}
		s3Opts = append(s3Opts, imageloader.WithS3MaxBytes(cfg.ImageMaxBytes), imageloader.WithS3MaxPixels(cfg.ImageMaxPixels))

		s3Loader, err := imageloader.NewS3Loader(ctx, cfg.S3, s3Opts...)
		if err != nil {
			return nil, fmt.Errorf("pushkit: s3 image loader: %w", err)
		}
		routes["s3"] = s3Loader
	}

	var loader imageloader.Loader = imageloader.NewSchemeLoader(routes)
	if cfg.ImageCacheSize > 0 {
		loader = imageloader.NewCachedLoader(loader, cfg.ImageCacheSize, cfg.ImageCacheTTL,
			imageloader.WithSharedLoadTimeout(cfg.FetchTimeout),
		)
	}
	return loader, nil
}
