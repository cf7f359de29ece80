package annotation

import (
	"context"
	"time"
)

// Annotation is a discrete, immutable event record attached to a timestamp or
// a time range, distinct from a continuous telemetry point.
type Annotation struct {
	ID          string            `json:"id"`
	ExternalID  string            `json:"external_id,omitempty"` // stable dedup key for externally-sourced events
	Category    string            `json:"category"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	StartsAt    time.Time         `json:"starts_at"`
	EndsAt      *time.Time        `json:"ends_at,omitempty"` // nil for point events
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Event categories.
const (
	CategoryStateChange  = "state_change"
	CategoryWeatherAlert = "weather_alert"
)

// Writer accepts new annotations.
type Writer interface {
	Add(ctx context.Context, a Annotation) error
}

// Reader serves range queries over stored annotations.
type Reader interface {
	QueryRange(ctx context.Context, from, to time.Time) ([]Annotation, error)
}
