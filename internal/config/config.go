package config

import (
	"flag"
	"os"
	"strings"

	"codeberg.org/mutker/poolwatch/internal/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval       = 60
	defaultListenAddr     = ":8089"
	defaultDBPath         = "/var/lib/poolwatch/poolwatch.db"
	defaultBufferCapacity = 1440
	defaultCacheTTL       = 15
	defaultRequestTimeout = 10
	defaultSessionMaxAge  = 24
	defaultSweepInterval  = 60
)

type Config struct {
	// Remote controller
	ControllerURL string `mapstructure:"controller_url"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`

	// Collection
	Interval       int `mapstructure:"interval"`        // seconds between poll cycles
	CacheTTL       int `mapstructure:"cache_ttl"`       // seconds a cached snapshot stays fresh
	RequestTimeout int `mapstructure:"request_timeout"` // seconds per authenticated request

	// Sessions
	SessionMaxAge int `mapstructure:"session_max_age"` // hours of inactivity before expiry
	SweepInterval int `mapstructure:"sweep_interval"`  // minutes between registry sweeps

	// Storage
	Database       string `mapstructure:"database"`
	BufferCapacity int    `mapstructure:"buffer_capacity"`

	// Weather
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`

	// HTTP API
	Listen string `mapstructure:"listen"`

	// MQTT publishing
	MQTTEnabled  bool   `mapstructure:"mqtt_enabled"`
	MQTTBroker   string `mapstructure:"mqtt_broker"`
	MQTTTopic    string `mapstructure:"mqtt_topic"`
	MQTTClientID string `mapstructure:"mqtt_client_id"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	// Credentials may arrive through a .env file next to the binary
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.String("controller-url", "", "Base URL of the pool controller panel")
	fs.Int("interval", defaultInterval, "Seconds between poll cycles")
	fs.String("listen", defaultListenAddr, "HTTP API listen address")
	fs.String("database", defaultDBPath, "Path to the telemetry database")
	fs.String("log-level", "", "Log level (debug, info, warning, error)")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	if err := fs.Parse(os.Args[1:]); err != nil && !errors.Is(err, flag.ErrHelp) {
		return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}

	// Config file: POOLWATCH_CONFIG wins, /etc/poolwatch.toml otherwise
	if path := os.Getenv("POOLWATCH_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("poolwatch")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && os.Getenv("POOLWATCH_CONFIG") != "" {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file: "+err.Error())
		}
	}

	v.SetEnvPrefix("POOLWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Command line flags override config file values
	fs.Visit(func(f *flag.Flag) {
		v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	// Zero-value defaults register the keys with viper so environment-only
	// values survive Unmarshal.
	v.SetDefault("controller_url", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("latitude", 0.0)
	v.SetDefault("longitude", 0.0)
	v.SetDefault("mqtt_enabled", false)
	v.SetDefault("mqtt_broker", "")
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("cache_ttl", defaultCacheTTL)
	v.SetDefault("request_timeout", defaultRequestTimeout)
	v.SetDefault("session_max_age", defaultSessionMaxAge)
	v.SetDefault("sweep_interval", defaultSweepInterval)
	v.SetDefault("database", defaultDBPath)
	v.SetDefault("buffer_capacity", defaultBufferCapacity)
	v.SetDefault("listen", defaultListenAddr)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("mqtt_topic", "poolwatch/telemetry")
	v.SetDefault("mqtt_client_id", "poolwatch")
}

func (c *Config) validate() error {
	errFactory := errors.New()

	if !isValidLogLevel(c.LogLevel) {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	if c.CacheTTL < 0 || c.RequestTimeout <= 0 || c.SessionMaxAge <= 0 || c.SweepInterval <= 0 {
		return errFactory.New(errors.ErrInvalidConfig)
	}

	if c.BufferCapacity <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "buffer_capacity must be positive")
	}

	return nil
}

// ValidateRemote checks the settings required to reach the controller.
// Split from validate so tests and read-only tooling can load a config
// without credentials.
func (c *Config) ValidateRemote() error {
	errFactory := errors.New()

	if c.ControllerURL == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "controller_url is required")
	}

	if c.Username == "" || c.Password == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "username and password are required")
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	default:
		return false
	}
}
