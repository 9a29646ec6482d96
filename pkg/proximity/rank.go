// Package proximity ranks points of interest by distance from a query
// coordinate.
package proximity

import (
	"sort"

	"safaigo/pkg/geo"
)

// Presentation tier radii for nearby-bin lists.
const (
	LocalRadiusKm  = 1.0
	NearbyRadiusKm = 3.0
)

// Ranked pairs a point with its distance from the query coordinate.
type Ranked[T any] struct {
	Point      T
	DistanceKm float64
}

// Rank computes the distance from query to every point and returns the
// full sequence sorted ascending. The sort is stable: points at equal
// distance keep their input order, so results are reproducible.
func Rank[T any](query geo.Point, points []T, at func(T) geo.Point) []Ranked[T] {
	ranked := make([]Ranked[T], len(points))
	for i, p := range points {
		ranked[i] = Ranked[T]{
			Point:      p,
			DistanceKm: geo.DistanceKm(query, at(p)),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	return ranked
}

// Partition splits an already-ranked sequence into a local tier
// (distance <= localKm) and a nearby tier (localKm < distance <= nearbyKm).
// It is a pure filter over the sorted input; points beyond nearbyKm are
// dropped.
func Partition[T any](ranked []Ranked[T], localKm, nearbyKm float64) (local, nearby []Ranked[T]) {
	for _, r := range ranked {
		switch {
		case r.DistanceKm <= localKm:
			local = append(local, r)
		case r.DistanceKm <= nearbyKm:
			nearby = append(nearby, r)
		}
	}
	return local, nearby
}
