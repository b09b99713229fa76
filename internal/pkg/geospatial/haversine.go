package geospatial

import "math"

// earthRadiusM is the mean Earth radius used for all distance math.
const earthRadiusM = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	halfLat := toRad(lat2-lat1) / 2
	halfLon := toRad(lon2-lon1) / 2

	a := math.Sin(halfLat)*math.Sin(halfLat) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(halfLon)*math.Sin(halfLon)

	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BoundingBox returns a box around a point with the given radius in meters.
// Good enough for prefiltering; exact checks still go through Haversine.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
