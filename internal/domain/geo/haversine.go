package geo

import "math"

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(radians(lat1))*math.Cos(radians(lat2))*sinLon*sinLon
	// Rounding can push a a hair past 1 for antipodal points.
	if a > 1 {
		a = 1
	}
	c := 2 * math.Asin(math.Sqrt(a))

	return c * EarthRadiusMeters
}

// Distance returns the great-circle distance in meters between p and q.
func (p Point) Distance(q Point) float64 {
	return Haversine(p.Lat, p.Lng, q.Lat, q.Lng)
}

// Within reports whether q lies within radius meters of p (inclusive).
func (p Point) Within(q Point, radius float64) bool {
	return p.Distance(q) <= radius
}

// ValidLatitude reports whether lat is in [-90,90]. NaN is invalid.
func ValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lng is in [-180,180]. NaN is invalid.
func ValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
