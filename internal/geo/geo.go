// Package geo computes great-circle distances for the attendance
// geofence check.
package geo

import "math"

const earthRadiusMeters = 6371000

// DistanceMeters returns the haversine distance between two WGS84
// coordinates in meters. Inputs are not validated; they come straight
// from the device positioning capability.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	latRad1 := lat1 * math.Pi / 180
	latRad2 := lat2 * math.Pi / 180

	diffLat := (lat2 - lat1) * math.Pi / 180
	diffLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(diffLat/2)*math.Sin(diffLat/2) +
		math.Cos(latRad1)*math.Cos(latRad2)*
			math.Sin(diffLon/2)*math.Sin(diffLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

type Classification struct {
	DistanceMeters float64
	WithinRange    bool
}

// Classify reports whether a point at the given distance falls inside the
// office tolerance radius. The boundary is inclusive: a point exactly at
// the radius counts as within range.
func Classify(distanceMeters, radiusMeters float64) Classification {
	return Classification{
		DistanceMeters: distanceMeters,
		WithinRange:    distanceMeters <= radiusMeters,
	}
}
