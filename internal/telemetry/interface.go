package telemetry

import (
	"context"
	"time"
)

// Fields is the fixed set of named telemetry values sampled each poll cycle.
// Every field is independently nullable: a subsystem whose fetch failed simply
// leaves its fields nil without blocking the others.
type Fields struct {
	SaltPPM            *float64 `json:"salt_ppm,omitempty"`
	CellTemperature    *float64 `json:"cell_temperature,omitempty"`
	CellVoltage        *float64 `json:"cell_voltage,omitempty"`
	WaterTemperature   *float64 `json:"water_temperature,omitempty"`
	AirTemperature     *float64 `json:"air_temperature,omitempty"`
	PumpRunning        *bool    `json:"pump_running,omitempty"`
	AmbientTemperature *float64 `json:"ambient_temperature,omitempty"`
	AmbientHumidity    *float64 `json:"ambient_humidity,omitempty"`
}

// Merge overlays every non-nil field of other onto f.
func (f *Fields) Merge(other Fields) {
	if other.SaltPPM != nil {
		f.SaltPPM = other.SaltPPM
	}
	if other.CellTemperature != nil {
		f.CellTemperature = other.CellTemperature
	}
	if other.CellVoltage != nil {
		f.CellVoltage = other.CellVoltage
	}
	if other.WaterTemperature != nil {
		f.WaterTemperature = other.WaterTemperature
	}
	if other.AirTemperature != nil {
		f.AirTemperature = other.AirTemperature
	}
	if other.PumpRunning != nil {
		f.PumpRunning = other.PumpRunning
	}
	if other.AmbientTemperature != nil {
		f.AmbientTemperature = other.AmbientTemperature
	}
	if other.AmbientHumidity != nil {
		f.AmbientHumidity = other.AmbientHumidity
	}
}

// Point is the durable unit of the store: one timestamp plus the field set.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Fields
}

// Snapshot is the result of one poll cycle. Errors carries a per-subsystem
// failure marker for observability; it never blocks the remaining fields.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Fields
	Errors map[string]string `json:"errors,omitempty"`
}

// Point reduces the snapshot to its storable shape.
func (s *Snapshot) Point() Point {
	return Point{Timestamp: s.Timestamp, Fields: s.Fields}
}

// Stats summarizes one numeric field over a query window. All three values
// are nil when the window holds no non-null samples.
type Stats struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
	Avg *float64 `json:"avg"`
}

// Repository defines the durable time-series backend.
type Repository interface {
	Store(ctx context.Context, point *Point) error
	QueryRange(ctx context.Context, since time.Time, limit int) ([]Point, error)
	Close() error
}

// Queryable field names accepted by Store.Stats.
const (
	FieldSaltPPM            = "salt_ppm"
	FieldCellTemperature    = "cell_temperature"
	FieldCellVoltage        = "cell_voltage"
	FieldWaterTemperature   = "water_temperature"
	FieldAirTemperature     = "air_temperature"
	FieldAmbientTemperature = "ambient_temperature"
	FieldAmbientHumidity    = "ambient_humidity"
)

var numericFields = map[string]func(*Fields) *float64{
	FieldSaltPPM:            func(f *Fields) *float64 { return f.SaltPPM },
	FieldCellTemperature:    func(f *Fields) *float64 { return f.CellTemperature },
	FieldCellVoltage:        func(f *Fields) *float64 { return f.CellVoltage },
	FieldWaterTemperature:   func(f *Fields) *float64 { return f.WaterTemperature },
	FieldAirTemperature:     func(f *Fields) *float64 { return f.AirTemperature },
	FieldAmbientTemperature: func(f *Fields) *float64 { return f.AmbientTemperature },
	FieldAmbientHumidity:    func(f *Fields) *float64 { return f.AmbientHumidity },
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}
