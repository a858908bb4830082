// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (optional .env file) and
// github.com/caarlos0/env/v11 (struct tag parsing). Every configuration type is
// parsed once and cached for the lifetime of the process. Types implementing
// Validator get a chance to fill defaults and reject bad values before the
// result is cached, so configuration is resolved and checked once at startup
// rather than looked up lazily at the point of use.
//
// # Usage
//
//	type Config struct {
//		SmallIcon string `env:"PUSHKIT_SMALL_ICON" envDefault:"ic_stat_notification"`
//	}
//
//	func (c *Config) Validate() error {
//		if c.SmallIcon == "" {
//			c.SmallIcon = "ic_stat_notification"
//		}
//		return nil
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// # Error Handling
//
// Parse failures are joined with ErrParsingConfig and validation failures with
// ErrValidation, so callers can classify them with errors.Is.
package config
