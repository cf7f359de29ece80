package panels

import (
	"context"

	"codeberg.org/mutker/poolwatch/internal/telemetry"
)

// htmlPanel fetches one authenticated page and maps extracted values onto the
// field set.
type htmlPanel struct {
	name      string
	path      string
	mapFields func(values map[string]string) telemetry.Fields
}

func (p *htmlPanel) Name() string {
	return p.name
}

func (p *htmlPanel) Collect(ctx context.Context, client Client) (telemetry.Fields, error) {
	page, err := client.Request(ctx, p.path, nil)
	if err != nil {
		return telemetry.Fields{}, err
	}

	return p.mapFields(extractValues(page)), nil
}

// Status is the primary status panel: water and air temperature.
func Status() Panel {
	return &htmlPanel{
		name: "status",
		path: "/status",
		mapFields: func(values map[string]string) telemetry.Fields {
			return telemetry.Fields{
				WaterTemperature: parseNumber(values["watertemp"]),
				AirTemperature:   parseNumber(values["airtemp"]),
			}
		},
	}
}

// FilterPump reports the pump run state.
func FilterPump() Panel {
	return &htmlPanel{
		name: "filterpump",
		path: "/filterpump",
		mapFields: func(values map[string]string) telemetry.Fields {
			return telemetry.Fields{
				PumpRunning: parseOnOff(values["pumpstate"]),
			}
		},
	}
}

// Heater carries its own water-temperature reading, preferred over the
// status panel's when both are present because it is closer to the sensor.
func Heater() Panel {
	return &htmlPanel{
		name: "heater",
		path: "/heater",
		mapFields: func(values map[string]string) telemetry.Fields {
			return telemetry.Fields{
				WaterTemperature: parseNumber(values["heaterwatertemp"]),
			}
		},
	}
}

// Chlorinator reports salt concentration, cell temperature, and cell voltage.
func Chlorinator() Panel {
	return &htmlPanel{
		name: "chlorinator",
		path: "/chlorinator",
		mapFields: func(values map[string]string) telemetry.Fields {
			return telemetry.Fields{
				SaltPPM:         parseNumber(values["saltppm"]),
				CellTemperature: parseNumber(values["celltemp"]),
				CellVoltage:     parseNumber(values["cellvoltage"]),
			}
		},
	}
}

// Lighting contributes no numeric fields; it is fetched so a flaky lighting
// page shows up as a per-subsystem error marker.
func Lighting() Panel {
	return &htmlPanel{
		name: "lighting",
		path: "/lights",
		mapFields: func(map[string]string) telemetry.Fields {
			return telemetry.Fields{}
		},
	}
}

// Schedule is the schedule listing; like Lighting it is availability-only.
func Schedule() Panel {
	return &htmlPanel{
		name: "schedule",
		path: "/schedule",
		mapFields: func(map[string]string) telemetry.Fields {
			return telemetry.Fields{}
		},
	}
}

// Defaults returns the full panel set fetched each poll cycle.
func Defaults() []Panel {
	return []Panel{
		Status(),
		FilterPump(),
		Heater(),
		Chlorinator(),
		Lighting(),
		Schedule(),
	}
}
