package domain

import "math"

const (
	earthRadiusMeters = 6371000.0

	// WalkingSpeedMetersPerMinute is the single system-wide walking
	// speed constant, used both for distance-to-minutes conversion and
	// for turning a walking-time budget into a search radius.
	WalkingSpeedMetersPerMinute = 80.0
)

// DistanceMeters returns the haversine great-circle distance between two points.
func DistanceMeters(a, b Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// WalkMinutes converts a distance to whole walking minutes.
func WalkMinutes(distanceMeters float64) int {
	return int(math.Round(distanceMeters / WalkingSpeedMetersPerMinute))
}

// RadiusForWalkMinutes converts a walking-time budget to a search radius.
func RadiusForWalkMinutes(minutes int) int {
	return minutes * int(WalkingSpeedMetersPerMinute)
}
