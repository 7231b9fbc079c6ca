// Package geo holds the great-circle helpers used by mechanic discovery.
package geo

import "math"

const earthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether p lies within the usual coordinate ranges
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180 &&
		!math.IsNaN(p.Latitude) && !math.IsNaN(p.Longitude)
}

// DistanceKm returns the haversine distance between a and b
func DistanceKm(a, b Point) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLon := degreesToRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(a.Latitude))*math.Cos(degreesToRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// Box is a latitude/longitude rectangle
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// BoundingBox returns a rectangle containing every point within radiusKm of center.
// Near the poles or across the antimeridian it widens to the full longitude range.
func BoundingBox(center Point, radiusKm float64) Box {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi
	box := Box{
		MinLat: math.Max(center.Latitude-dLat, -90),
		MaxLat: math.Min(center.Latitude+dLat, 90),
		MinLon: -180,
		MaxLon: 180,
	}

	cosLat := math.Cos(degreesToRadians(center.Latitude))
	if cosLat < 1e-6 {
		return box
	}
	dLon := dLat / cosLat
	if center.Longitude-dLon < -180 || center.Longitude+dLon > 180 || dLon >= 180 {
		return box
	}
	box.MinLon = center.Longitude - dLon
	box.MaxLon = center.Longitude + dLon
	return box
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
