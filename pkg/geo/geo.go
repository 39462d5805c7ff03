// Package geo decides whether a service listing's coverage area includes a
// searcher's location. It is pure computation with no state.
package geo

import "math"

const earthRadiusKm = 6371

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Area is a circular coverage region: center plus radius in kilometers.
type Area struct {
	Center   Point
	RadiusKm float64
}

// Distance returns the great-circle distance between two points in
// kilometers, using the haversine formula.
func Distance(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Match reports whether a listing with the given coverage area is eligible
// for a searcher at the given point and search radius (km). A listing with
// no area matches every searcher. Otherwise the searcher must be within
// min(area radius, searcher radius) of the area center.
func Match(searcher Point, searcherRadiusKm float64, area *Area) bool {
	if area == nil {
		return true
	}
	return Distance(searcher, area.Center) <= math.Min(area.RadiusKm, searcherRadiusKm)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
