package session

import (
	"time"

	"codeberg.org/mutker/poolwatch/internal/errors"
)

const (
	defaultLoginPath      = "/"
	defaultRequestTimeout = 10 * time.Second
	defaultMaxAge         = 24 * time.Hour
	defaultSweepInterval  = time.Hour
)

type Config struct {
	BaseURL        string
	LoginPath      string
	RequestTimeout time.Duration // per-request deadline, cancellation-triggered
	MaxAge         time.Duration // inactivity window before a session expires
	SweepInterval  time.Duration // registry sweep cadence
}

func DefaultConfig() Config {
	return Config{
		LoginPath:      defaultLoginPath,
		RequestTimeout: defaultRequestTimeout,
		MaxAge:         defaultMaxAge,
		SweepInterval:  defaultSweepInterval,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.BaseURL == "" {
		return errFactory.WithMessage(ErrInvalidConfig, "base URL is required")
	}
	if c.RequestTimeout <= 0 || c.MaxAge <= 0 || c.SweepInterval <= 0 {
		return errFactory.New(ErrInvalidConfig)
	}

	return nil
}

func (c Config) withDefaults() Config {
	if c.LoginPath == "" {
		c.LoginPath = defaultLoginPath
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaultMaxAge
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = defaultSweepInterval
	}

	return c
}
