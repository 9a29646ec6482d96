package api

import (
	"math"
	"net/http"

	"safaigo/pkg/geo"
	"safaigo/pkg/model"
	"safaigo/pkg/proximity"
	"safaigo/pkg/store"
)

// BinsHandler serves nearby collection-point lookups.
type BinsHandler struct {
	store    store.BinStore
	localKm  float64
	nearbyKm float64
}

// NewBinsHandler creates a BinsHandler with the given tier radii.
func NewBinsHandler(s store.BinStore, localKm, nearbyKm float64) *BinsHandler {
	if localKm <= 0 {
		localKm = proximity.LocalRadiusKm
	}
	if nearbyKm <= 0 {
		nearbyKm = proximity.NearbyRadiusKm
	}
	return &BinsHandler{store: s, localKm: localKm, nearbyKm: nearbyKm}
}

// RankedBin is one bin with its distance from the query point.
type RankedBin struct {
	*model.Bin
	DistanceKm float64 `json:"distance_km"`
}

// NearbyBinsResponse partitions results into walkable and short-trip
// tiers, each sorted nearest-first.
type NearbyBinsResponse struct {
	Local  []RankedBin `json:"local"`
	Nearby []RankedBin `json:"nearby"`
}

// HandleNearby lists the bins around ?lat=..&lon=.. in two distance tiers.
func (h *BinsHandler) HandleNearby(w http.ResponseWriter, r *http.Request) {
	p, err := parsePoint(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Coarse pre-filter in the store, exact haversine ranking after.
	minLat, maxLat, minLon, maxLon := boundingWindow(p, h.nearbyKm)
	bins, err := h.store.BinsInBounds(r.Context(), minLat, maxLat, minLon, maxLon)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "bin lookup failed")
		return
	}

	ranked := proximity.Rank(p, bins, func(b *model.Bin) geo.Point { return b.Location() })
	local, nearby := proximity.Partition(ranked, h.localKm, h.nearbyKm)

	resp := NearbyBinsResponse{
		Local:  make([]RankedBin, 0, len(local)),
		Nearby: make([]RankedBin, 0, len(nearby)),
	}
	for _, rb := range local {
		resp.Local = append(resp.Local, RankedBin{Bin: rb.Point, DistanceKm: rb.DistanceKm})
	}
	for _, rb := range nearby {
		resp.Nearby = append(resp.Nearby, RankedBin{Bin: rb.Point, DistanceKm: rb.DistanceKm})
	}

	writeJSON(w, http.StatusOK, resp)
}

// boundingWindow returns a lat/lon rectangle that safely contains the
// radius around p. The longitude span widens with latitude.
func boundingWindow(p geo.Point, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := radiusKm / 111.0
	lonDelta := radiusKm / (111.0 * math.Cos(p.Lat*math.Pi/180))

	return p.Lat - latDelta, p.Lat + latDelta, p.Lon - lonDelta, p.Lon + lonDelta
}
