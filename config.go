package pushkit

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/pushkit/pkg/imageloader"
	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/push"
	"github.com/dmitrymomot/pushkit/pkg/pushhttp"
	"github.com/dmitrymomot/pushkit/pkg/status"
)

// Token store backends.
const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

// Config is the complete runtime configuration, read from the environment
// with config.Load. Validate fills defaults and rejects malformed values.
type Config struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	Service   string `env:"SERVICE_NAME" envDefault:"pushkit"`
	LogLevel  string `env:"LOG_LEVEL"` // overrides the environment default when set
	LogFormat string `env:"LOG_FORMAT"`

	SmallIcon            string            `env:"PUSHKIT_SMALL_ICON" envDefault:"ic_stat_notification"`
	ChannelID            string            `env:"PUSHKIT_CHANNEL_ID" envDefault:"Default"`
	ChannelName          string            `env:"PUSHKIT_CHANNEL_NAME" envDefault:"Default Channel"`
	BackgroundRestricted bool              `env:"PUSHKIT_BACKGROUND_RESTRICTED"`
	DeepLinkParents      map[string]string `env:"PUSHKIT_DEEPLINK_PARENTS" envKeyValSeparator:"="` // child=parent pairs, comma separated
	CallbackBase         string            `env:"PUSHKIT_CALLBACK_BASE" envDefault:"/callbacks"`
	RenderQueue          int               `env:"PUSHKIT_RENDER_QUEUE" envDefault:"64"`

	StatusURL              string        `env:"PUSHKIT_STATUS_URL"` // empty disables remote reporting
	StatusSecret           string        `env:"PUSHKIT_STATUS_SECRET"`
	StatusAPIKey           string        `env:"PUSHKIT_STATUS_API_KEY"`
	StatusTimeout          time.Duration `env:"PUSHKIT_STATUS_TIMEOUT" envDefault:"10s"`
	StatusMaxRetries       int           `env:"PUSHKIT_STATUS_MAX_RETRIES" envDefault:"3"`
	StatusQueueSize        int           `env:"PUSHKIT_STATUS_QUEUE_SIZE" envDefault:"256"`
	StatusCircuitThreshold int           `env:"PUSHKIT_STATUS_CIRCUIT_THRESHOLD" envDefault:"5"` // 0 disables the breaker
	StatusCircuitRecovery  time.Duration `env:"PUSHKIT_STATUS_CIRCUIT_RECOVERY" envDefault:"30s"`

	TokenStore string             `env:"PUSHKIT_TOKEN_STORE" envDefault:"memory"`
	Redis      status.RedisConfig `envPrefix:"PUSHKIT_"`

	FetchTimeout   time.Duration        `env:"PUSHKIT_FETCH_TIMEOUT" envDefault:"30s"`
	ImageMaxBytes  int64                `env:"PUSHKIT_IMAGE_MAX_BYTES" envDefault:"10485760"`
	ImageMaxPixels int64                `env:"PUSHKIT_IMAGE_MAX_PIXELS" envDefault:"20000000"`
	ImageRateLimit float64              `env:"PUSHKIT_IMAGE_RATE_LIMIT"` // fetches per second, 0 is unlimited
	ImageRateBurst int                  `env:"PUSHKIT_IMAGE_RATE_BURST" envDefault:"5"`
	ImageCacheSize int                  `env:"PUSHKIT_IMAGE_CACHE_SIZE" envDefault:"128"` // 0 disables the cache
	ImageCacheTTL  time.Duration        `env:"PUSHKIT_IMAGE_CACHE_TTL" envDefault:"10m"`
	S3             imageloader.S3Config `envPrefix:"PUSHKIT_"` // s3:// URLs are served when a region is set

	HTTP pushhttp.Config `envPrefix:"PUSHKIT_"`
}

// Validate normalises c in place and reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	c.SmallIcon = strings.TrimSpace(c.SmallIcon)
	if c.SmallIcon == "" {
		c.SmallIcon = push.DefaultSmallIcon
	}
	if strings.TrimSpace(c.ChannelID) == "" {
		c.ChannelID = push.DefaultChannelID
	}
	if strings.TrimSpace(c.ChannelName) == "" {
		c.ChannelName = push.DefaultChannelName
	}
	if c.CallbackBase == "" {
		c.CallbackBase = "/callbacks"
	}
	if c.RenderQueue <= 0 {
		c.RenderQueue = 64
	}
	if c.TokenStore == "" {
		c.TokenStore = TokenStoreMemory
	}

	if c.LogLevel != "" {
		if _, err := c.level(); err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}
	switch logger.Format(c.LogFormat) {
	case "", logger.FormatJSON, logger.FormatText:
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT: must be %q or %q", logger.FormatJSON, logger.FormatText))
	}

	if c.StatusURL != "" {
		u, err := url.Parse(c.StatusURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, errors.New("PUSHKIT_STATUS_URL: must be an absolute http(s) URL"))
		}
	}
	if c.StatusMaxRetries < 0 {
		errs = append(errs, errors.New("PUSHKIT_STATUS_MAX_RETRIES: must not be negative"))
	}
	if c.StatusCircuitThreshold < 0 {
		errs = append(errs, errors.New("PUSHKIT_STATUS_CIRCUIT_THRESHOLD: must not be negative"))
	}

	switch c.TokenStore {
	case TokenStoreMemory:
	case TokenStoreRedis:
		if c.Redis.ConnectionURL == "" {
			errs = append(errs, errors.New("PUSHKIT_REDIS_URL: required for the redis token store"))
		}
	default:
		errs = append(errs, fmt.Errorf("PUSHKIT_TOKEN_STORE: unknown backend %q", c.TokenStore))
	}

	if c.ImageMaxBytes <= 0 {
		errs = append(errs, errors.New("PUSHKIT_IMAGE_MAX_BYTES: must be positive"))
	}
	if c.ImageMaxPixels <= 0 {
		errs = append(errs, errors.New("PUSHKIT_IMAGE_MAX_PIXELS: must be positive"))
	}
	if c.ImageCacheSize < 0 {
		errs = append(errs, errors.New("PUSHKIT_IMAGE_CACHE_SIZE: must not be negative"))
	}
	if c.ImageRateLimit < 0 {
		errs = append(errs, errors.New("PUSHKIT_IMAGE_RATE_LIMIT: must not be negative"))
	}

	return errors.Join(errs...)
}

// Channel returns the configured notification channel.
func (c Config) Channel() push.Channel {
	return push.Channel{ID: c.ChannelID, Name: c.ChannelName, Importance: push.ImportanceDefault}
}

// NewLogger builds the service logger for the configured environment.
func (c Config) NewLogger(opts ...logger.Option) *slog.Logger {
	base := []logger.Option{logger.WithEnvironment(c.Env, c.Service)}
	if lvl, err := c.level(); err == nil && c.LogLevel != "" {
		base = append(base, logger.WithLevel(lvl))
	}
	if c.LogFormat != "" {
		base = append(base, logger.WithFormat(logger.Format(c.LogFormat)))
	}
	return logger.New(append(base, opts...)...)
}

func (c Config) level() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl, err
}
