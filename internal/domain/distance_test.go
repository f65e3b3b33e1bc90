package domain

import (
	"math"
	"testing"
)

func TestFormatMiles(t *testing.T) {
	if got := FormatMiles(3.21); got != "3.2 mi" {
		t.Fatalf("FormatMiles(3.21) = %q", got)
	}
	if got := FormatMiles(0); got != "0.0 mi" {
		t.Fatalf("FormatMiles(0) = %q", got)
	}
}

func TestParseMiles(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.2 mi", 3.2, true},
		{"1,204 mi", 1204, true},
		{"5280 ft", 1, true},
		{"1.609344 km", 1, true},
		{"1609.344 m", 1, true},
		{LabelUnknown, 0, false},
		{LabelUnavailable, 0, false},
		{"", 0, false},
		{"-2 mi", 0, false},
		{"3 parsecs", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMiles(tt.in)
		if ok != tt.ok || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseMiles(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
