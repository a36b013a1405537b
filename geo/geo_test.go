package geo

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lng1 float64
		lat2, lng2 float64
		expected   float64
		tolerance  float64
	}{
		{
			name: "same point",
			lat1: 27.7172, lng1: 85.3240,
			lat2: 27.7172, lng2: 85.3240,
			expected:  0,
			tolerance: 0.001,
		},
		{
			name: "kathmandu to patan",
			lat1: 27.7172, lng1: 85.3240,
			lat2: 27.6710, lng2: 85.3234,
			expected:  5.14,
			tolerance: 0.1,
		},
		{
			name: "one degree of latitude",
			lat1: 0, lng1: 0,
			lat2: 1, lng2: 0,
			expected:  111.19,
			tolerance: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("HaversineKm = %f, want %f ± %f", got, tt.expected, tt.tolerance)
			}
		})
	}
}

func TestValidCoordinates(t *testing.T) {
	if !ValidLatitude(90) || !ValidLatitude(-90) || !ValidLatitude(0) {
		t.Error("boundary latitudes should be valid")
	}
	if ValidLatitude(90.001) || ValidLatitude(-91) {
		t.Error("out-of-range latitudes should be invalid")
	}
	if !ValidLongitude(180) || !ValidLongitude(-180) {
		t.Error("boundary longitudes should be valid")
	}
	if ValidLongitude(180.5) || ValidLongitude(-200) {
		t.Error("out-of-range longitudes should be invalid")
	}
}

func TestGridCell(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{27.717245, 27.717},
		{27.71750, 27.718}, // rounds half up
		{-85.32449, -85.324},
		{0, 0},
	}

	for _, tt := range tests {
		if got := GridCell(tt.in); got != tt.expected {
			t.Errorf("GridCell(%f) = %f, want %f", tt.in, got, tt.expected)
		}
	}
}
