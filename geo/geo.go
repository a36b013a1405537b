package geo

import (
	"math"
)

// EarthRadiusKm is the Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// HaversineKm computes the great-circle distance in kilometers between two
// lat/lng pairs using the haversine formula.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// ValidLatitude reports whether lat is within [-90, 90].
func ValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lng is within [-180, 180].
func ValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

// GridCell rounds a coordinate to three decimal places, the ~100m cell used
// for hotspot grouping.
func GridCell(v float64) float64 {
	return math.Round(v*1000) / 1000
}
