package telemetry

import "codeberg.org/mutker/poolwatch/internal/errors"

const (
	defaultDirPerm  = 0o755
	defaultDBPath   = "/var/lib/poolwatch/poolwatch.db"
	defaultCapacity = 1440 // one point per minute for 24h at the default poll interval
)

type Config struct {
	DBPath   string
	Capacity int
}

func DefaultConfig() Config {
	return Config{
		DBPath:   defaultDBPath,
		Capacity: defaultCapacity,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.Capacity <= 0 {
		return errFactory.WithData(ErrInvalidConfig, c.Capacity)
	}
	return nil
}
