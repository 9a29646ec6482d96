package region

import (
	"safaigo/pkg/geo"
)

// MatchBounds returns the region whose bounding box contains p.
// When several boxes contain the point, the one with the smallest box area
// wins; equal areas fall back to the lexicographically smallest name so the
// result never depends on catalog order.
func (c *Catalog) MatchBounds(p geo.Point) *Region {
	var best *Region
	var bestArea float64

	for i := range c.regions {
		r := &c.regions[i]
		if !r.Contains(p) {
			continue
		}
		area := geo.BoundArea(*r.Bounds)
		if best == nil || area < bestArea || (area == bestArea && r.Name < best.Name) {
			best = r
			bestArea = area
		}
	}

	return best
}

// Nearest returns the region with the closest centroid to p and its
// distance in kilometers. The second return value reports whether the
// distance is within the region's acceptance radius; the region and
// distance are returned either way so callers can build "Near X" fallbacks.
// Ties on distance break by name for determinism.
func (c *Catalog) Nearest(p geo.Point) (*Region, float64, bool) {
	var best *Region
	var bestDist float64

	for i := range c.regions {
		r := &c.regions[i]
		d := geo.DistanceKm(p, r.Centroid)
		if best == nil || d < bestDist || (d == bestDist && r.Name < best.Name) {
			best = r
			bestDist = d
		}
	}

	if best == nil {
		return nil, 0, false
	}
	return best, bestDist, bestDist <= best.RadiusKm
}
