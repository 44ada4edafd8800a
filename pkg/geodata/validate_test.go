package geodata

import (
	"math"
	"testing"
)

// TestValid covers the geographic ranges and the non-finite inputs the
// coercion layer can never produce but the contract still rejects.
func TestValid(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"origin", 0, 0, true},
		{"north pole", 90, 0, true},
		{"south pole", -90, 0, true},
		{"date line east", 0, 180, true},
		{"date line west", 0, -180, true},
		{"lat too high", 90.0001, 0, false},
		{"lat too low", -91, 0, false},
		{"lon too high", 0, 180.5, false},
		{"lon too low", 0, -181, false},
		{"nan lat", math.NaN(), 0, false},
		{"nan lon", 0, math.NaN(), false},
		{"inf lat", math.Inf(1), 0, false},
		{"inf lon", 0, math.Inf(-1), false},
	}
	for _, tc := range tests {
		if got := Valid(tc.lat, tc.lon); got != tc.want {
			t.Errorf("%s: Valid(%v,%v) = %v, want %v", tc.name, tc.lat, tc.lon, got, tc.want)
		}
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		cell string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{" -73.99 ", -73.99, true},
		{"1e2", 100, true},
		{"", 0, false},
		{"   ", 0, false},
		{"x", 0, false},
		{"12,5", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tc := range tests {
		got, ok := CoerceFloat(tc.cell)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("CoerceFloat(%q) = (%v,%v), want (%v,%v)", tc.cell, got, ok, tc.want, tc.ok)
		}
	}
}

// TestValidCoordinates checks the raw-cell contract: true iff both
// cells convert to finite numbers inside the geographic ranges.
func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon string
		want     bool
	}{
		{"10", "20", true},
		{"-90", "180", true},
		{"91", "20", false},
		{"10", "-200", false},
		{"x", "20", false},
		{"10", "y", false},
		{"", "", false},
	}
	for _, tc := range tests {
		if got := ValidCoordinates(tc.lat, tc.lon); got != tc.want {
			t.Errorf("ValidCoordinates(%q,%q) = %v, want %v", tc.lat, tc.lon, got, tc.want)
		}
	}
}
