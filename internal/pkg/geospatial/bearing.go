package geospatial

import "math"

var cardinals = [8]string{
	"north", "northeast", "east", "southeast",
	"south", "southwest", "west", "northwest",
}

// Bearing calculates the initial great-circle bearing in degrees from the
// first point to the second, normalized to [0, 360). The value is undefined
// for coincident points.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	dLon := toRad(lon2 - lon1)
	y := math.Sin(dLon) * math.Cos(toRad(lat2))
	x := math.Cos(toRad(lat1))*math.Sin(toRad(lat2)) -
		math.Sin(toRad(lat1))*math.Cos(toRad(lat2))*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// CardinalDirection maps a bearing in degrees to the nearest of the eight
// compass points, starting at north and proceeding clockwise.
func CardinalDirection(bearing float64) string {
	idx := int(math.Round(bearing/45)) % 8
	return cardinals[idx]
}
