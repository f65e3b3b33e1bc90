package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// LabelUnknown is shown when an entity's coordinates could not be resolved.
	LabelUnknown = "-- mi"
	// LabelUnavailable is shown when the user's own location is unknown.
	LabelUnavailable = "Distance unavailable"

	MetersPerMile = 1609.344
	feetPerMile   = 5280.0
)

// RoadDistance is a driving distance as reported by a distance-matrix service.
type RoadDistance struct {
	Text     string
	Miles    float64
	Duration time.Duration
}

// FormatMiles renders a straight-line fallback distance, e.g. "3.2 mi".
func FormatMiles(miles float64) string {
	return fmt.Sprintf("%.1f mi", miles)
}

// ParseMiles reads a distance label back into miles.
// It understands "3.2 mi", "1,204 mi" and "850 ft"; sentinel labels report false.
func ParseMiles(label string) (float64, bool) {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) != 2 {
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}

	switch fields[1] {
	case "mi", "mile", "miles":
		return v, true
	case "ft", "feet":
		return v / feetPerMile, true
	case "km":
		return v * 1000 / MetersPerMile, true
	case "m":
		return v / MetersPerMile, true
	}
	return 0, false
}
