package weather

import (
	"context"
	"time"
)

// Reading is one normalized current-conditions sample.
type Reading struct {
	Timestamp    time.Time
	TemperatureF float64
	Humidity     float64 // relative humidity, percent
}

// Provider abstracts a current-conditions source for a fixed location.
type Provider interface {
	Name() string
	Current(ctx context.Context) (Reading, error)
}
