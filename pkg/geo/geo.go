// Package geo provides coordinate types and great-circle distance
// calculations shared by the resolver and the proximity ranker.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate indicates a latitude or longitude outside the valid range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"latitude" yaml:"lat"`
	Lon float64 `json:"longitude" yaml:"lon"`
}

// Validate checks that the point lies within valid latitude/longitude ranges.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinate, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinate, p.Lon)
	}
	return nil
}

// Orb converts the point to an orb.Point (lon, lat order).
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// String formats the point with 4 decimal places, the precision used for
// user-facing coordinate display.
func (p Point) String() string {
	return fmt.Sprintf("%.4f, %.4f", p.Lat, p.Lon)
}

// DistanceKm calculates the haversine distance between two points in kilometers.
func DistanceKm(p1, p2 Point) float64 {
	dLat := (p2.Lat - p1.Lat) * (math.Pi / 180.0)
	dLon := (p2.Lon - p1.Lon) * (math.Pi / 180.0)
	lat1 := p1.Lat * (math.Pi / 180.0)
	lat2 := p2.Lat * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// BoundArea returns the area of a bounding box in square degrees.
// Used as a deterministic tie-breaker when several boxes contain a point.
func BoundArea(b orb.Bound) float64 {
	return (b.Max[1] - b.Min[1]) * (b.Max[0] - b.Min[0])
}
