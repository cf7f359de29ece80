// Package comfort classifies ambient temperature/humidity pairs into discrete
// comfort categories and derives aggregate recommendations over a window.
// Pure functions only.
package comfort

import "fmt"

// Category is a discrete comfort classification.
type Category string

const (
	Comfortable Category = "comfortable"
	Hot         Category = "hot"
	Cold        Category = "cold"
	Humid       Category = "humid"
	Dry         Category = "dry"
	Marginal    Category = "marginal"
	Unknown     Category = "unknown"
)

// HumidityBand is a humidity-only classification.
type HumidityBand string

const (
	HumidityLow      HumidityBand = "low"
	HumidityNormal   HumidityBand = "normal"
	HumidityHigh     HumidityBand = "high"
	HumidityVeryHigh HumidityBand = "very_high"
	HumidityUnknown  HumidityBand = "unknown"
)

// Classify maps a temperature (°F) and relative humidity (%) pair onto a
// comfort category. The hot check runs before the cold/humid/dry checks so a
// warm, muggy reading classifies as hot rather than humid.
func Classify(tempF, humidity *float64) Category {
	if tempF == nil || humidity == nil {
		return Unknown
	}

	t, h := *tempF, *humidity

	if t >= 68 && t <= 78 && h >= 30 && h <= 60 {
		return Comfortable
	}

	if t > 78 || (t > 75 && h > 60) {
		return Hot
	}

	if t < 68 {
		return Cold
	}

	if h > 60 {
		return Humid
	}

	if h < 30 {
		return Dry
	}

	return Marginal
}

// HumidityLevel maps relative humidity onto a coarse band.
func HumidityLevel(humidity *float64) HumidityBand {
	switch {
	case humidity == nil:
		return HumidityUnknown
	case *humidity < 30:
		return HumidityLow
	case *humidity <= 60:
		return HumidityNormal
	case *humidity <= 70:
		return HumidityHigh
	default:
		return HumidityVeryHigh
	}
}

// Summary aggregates classifications over a window.
type Summary struct {
	Total          int                  `json:"total"`
	Counts         map[Category]int     `json:"counts"`
	Percentages    map[Category]float64 `json:"percentages"`
	OverallComfort Category             `json:"overall_comfort"`
	Recommendation string               `json:"recommendation,omitempty"`
}

// Categories eligible for the overall verdict, in tie-break precedence order.
var precedence = []Category{Comfortable, Hot, Cold, Humid, Dry}

const recommendationThreshold = 30.0 // percent of window

// Aggregate computes per-category counts and percentages for a window of
// classified points, picks the plurality category (ties resolved by the fixed
// precedence comfortable > hot > cold > humid > dry), and emits a
// recommendation whenever a single problematic category exceeds 30% of the
// window.
func Aggregate(categories []Category) Summary {
	summary := Summary{
		Counts:         make(map[Category]int),
		Percentages:    make(map[Category]float64),
		OverallComfort: Unknown,
	}

	for _, c := range categories {
		summary.Counts[c]++
		summary.Total++
	}

	if summary.Total == 0 {
		return summary
	}

	for c, n := range summary.Counts {
		summary.Percentages[c] = float64(n) * 100 / float64(summary.Total)
	}

	best := -1
	for _, c := range precedence {
		if n := summary.Counts[c]; n > best {
			best = n
			summary.OverallComfort = c
		}
	}
	if best <= 0 {
		summary.OverallComfort = Unknown
	}

	summary.Recommendation = recommend(summary.Percentages)

	return summary
}

var recommendations = map[Category]string{
	Hot:   "consider shading or additional cooling",
	Cold:  "consider raising the heater setpoint",
	Humid: "consider increasing ventilation or dehumidification",
	Dry:   "consider a humidifier near the enclosure",
}

func recommend(percentages map[Category]float64) string {
	for _, c := range []Category{Hot, Cold, Humid, Dry} {
		if percentages[c] > recommendationThreshold {
			return fmt.Sprintf("%s conditions for %.0f%% of the window: %s",
				c, percentages[c], recommendations[c])
		}
	}

	return ""
}
