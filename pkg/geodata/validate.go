package geodata

import (
	"math"
	"strconv"
	"strings"
)

// Valid reports whether both values are finite numbers inside the
// geographic ranges: latitude in [-90,90], longitude in [-180,180].
func Valid(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return false
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// CoerceFloat converts a raw CSV cell to a float64. Blank cells and
// anything that does not parse to a finite number report ok=false.
// The function never panics, matching the loader's policy of counting
// bad rows instead of raising on them.
func CoerceFloat(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ValidCoordinates coerces two raw cells and range-checks the result
// in one step. Any coercion failure yields false.
func ValidCoordinates(latRaw, lonRaw string) bool {
	lat, ok := CoerceFloat(latRaw)
	if !ok {
		return false
	}
	lon, ok := CoerceFloat(lonRaw)
	if !ok {
		return false
	}
	return Valid(lat, lon)
}
