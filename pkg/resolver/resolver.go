// Package resolver turns a raw coordinate into a best-effort place
// identification with an explicit accuracy tier.
//
// Resolution walks a fixed chain: bounding-box match against the region
// catalog, nearest-centroid match, external geocoders, and finally a
// coordinate echo. The first stage that produces a usable name wins; the
// chain as a whole never fails except on an invalid coordinate.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"safaigo/pkg/geo"
	"safaigo/pkg/geocode"
	"safaigo/pkg/logging"
	"safaigo/pkg/region"
)

// Source identifies which stage of the chain produced a result.
type Source string

const (
	SourcePreciseBoundingBox Source = "precise_bounding_box"
	SourceNearestRegion      Source = "nearest_region"
	SourceExternalGeocoder   Source = "external_geocoder"
	SourceCoordinateFallback Source = "coordinate_fallback"
)

// Accuracy is the coarse confidence label attached to a result.
type Accuracy string

const (
	AccuracyHigh   Accuracy = "high"
	AccuracyMedium Accuracy = "medium"
	AccuracyLow    Accuracy = "low"
)

// ResolvedLocation is the engine's output. Created fresh per call and
// never persisted here; callers may store it alongside a waste entry.
type ResolvedLocation struct {
	Name        string    `json:"name"`
	Area        string    `json:"area"`
	Coordinates geo.Point `json:"coordinates"`
	Source      Source    `json:"source"`
	Accuracy    Accuracy  `json:"accuracy"`
	DistanceKm  *float64  `json:"distance_km,omitempty"`
}

// Thresholds holds the distance cutoffs of the chain. One consistent set
// for every entry point.
type Thresholds struct {
	// MediumKm is the nearest-match distance at or below which the
	// result is Medium rather than Low accuracy.
	MediumKm float64
	// NearFallbackKm is how far a centroid may be for the terminal
	// fallback to still say "Near X" instead of echoing coordinates.
	NearFallbackKm float64
}

// DefaultThresholds returns the standard cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{MediumKm: 1.0, NearFallbackKm: 5.0}
}

// Override short-circuits resolution with a caller-supplied result.
// Passed per call, never stored globally, so a pinned location stays
// scoped to the request or test that set it.
type Override func(p geo.Point) *ResolvedLocation

// Option configures a single Resolve call.
type Option func(*callOptions)

type callOptions struct {
	override Override
}

// WithOverride installs an override resolver for this call only.
func WithOverride(o Override) Option {
	return func(c *callOptions) { c.override = o }
}

// Resolver runs the resolution chain.
type Resolver struct {
	catalog    *region.Catalog
	providers  []geocode.Provider // priority order: first entry wins ties
	sanitizer  *geocode.Sanitizer
	thresholds Thresholds
	logger     *slog.Logger
}

// New creates a Resolver. The provider slice order defines candidate
// selection priority.
func New(cat *region.Catalog, providers []geocode.Provider, san *geocode.Sanitizer, th Thresholds, logger *slog.Logger) *Resolver {
	if th.MediumKm <= 0 {
		th.MediumKm = DefaultThresholds().MediumKm
	}
	if th.NearFallbackKm <= 0 {
		th.NearFallbackKm = DefaultThresholds().NearFallbackKm
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		catalog:    cat,
		providers:  providers,
		sanitizer:  san,
		thresholds: th,
		logger:     logger,
	}
}

// Resolve identifies the place at p. It returns an error only for
// coordinates outside the valid latitude/longitude ranges; every other
// condition degrades to a lower-accuracy result.
func (r *Resolver) Resolve(ctx context.Context, p geo.Point, opts ...Option) (*ResolvedLocation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}
	if co.override != nil {
		if loc := co.override(p); loc != nil {
			logging.Trace(r.logger, "resolution overridden", "name", loc.Name)
			return loc, nil
		}
	}

	// Stage 1: bounding-box containment. A hit is the strongest signal
	// we have and skips the external providers entirely.
	if reg := r.catalog.MatchBounds(p); reg != nil {
		logging.Trace(r.logger, "bounding box hit", "region", reg.Name)
		return &ResolvedLocation{
			Name:        reg.Name,
			Area:        reg.Area,
			Coordinates: p,
			Source:      SourcePreciseBoundingBox,
			Accuracy:    AccuracyHigh,
		}, nil
	}

	// Stage 2: nearest centroid within the region's acceptance radius.
	// The nearest region is remembered either way for the fallback.
	nearest, dist, within := r.catalog.Nearest(p)
	if within {
		accuracy := AccuracyLow
		if dist <= r.thresholds.MediumKm {
			accuracy = AccuracyMedium
		}
		logging.Trace(r.logger, "nearest region hit", "region", nearest.Name, "dist_km", dist)
		return &ResolvedLocation{
			Name:        nearest.Name,
			Area:        nearest.Area,
			Coordinates: p,
			Source:      SourceNearestRegion,
			Accuracy:    accuracy,
			DistanceKm:  &dist,
		}, nil
	}

	// Stage 3: external geocoders.
	if loc := r.tryGeocoders(ctx, p); loc != nil {
		return loc, nil
	}

	// Stage 4: terminal fallback. Never fails.
	if nearest != nil && dist <= r.thresholds.NearFallbackKm {
		return &ResolvedLocation{
			Name:        "Near " + nearest.Name,
			Area:        nearest.Area,
			Coordinates: p,
			Source:      SourceNearestRegion,
			Accuracy:    AccuracyLow,
			DistanceKm:  &dist,
		}, nil
	}

	return &ResolvedLocation{
		Name:        fmt.Sprintf("GPS Location %s", p),
		Area:        r.catalog.Label(),
		Coordinates: p,
		Source:      SourceCoordinateFallback,
		Accuracy:    AccuracyLow,
	}, nil
}

// tryGeocoders dispatches all configured providers concurrently and picks
// the first candidate, in provider priority order, that survives
// sanitization. Selection is by configuration order, not arrival order,
// so results stay deterministic when several providers answer.
func (r *Resolver) tryGeocoders(ctx context.Context, p geo.Point) *ResolvedLocation {
	if len(r.providers) == 0 {
		return nil
	}

	// Ceiling for the whole stage: the slowest single provider, not the
	// sum. Each adapter also applies its own per-call timeout.
	var ceiling time.Duration
	for _, prov := range r.providers {
		if t := prov.Timeout(); t > ceiling {
			ceiling = t
		}
	}
	ctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	candidates := make([]geocode.Candidate, len(r.providers))
	errs := make([]error, len(r.providers))

	var wg sync.WaitGroup
	for i, prov := range r.providers {
		wg.Add(1)
		go func(i int, prov geocode.Provider) {
			defer wg.Done()
			candidates[i], errs[i] = prov.ReverseGeocode(ctx, p)
		}(i, prov)
	}
	wg.Wait()

	for i, prov := range r.providers {
		if errs[i] != nil {
			// Provider failures are absorbed here; the caller only
			// ever sees them through the accuracy tier.
			r.logger.Warn("geocoder failed", "provider", prov.Name(), "error", errs[i])
			continue
		}
		if candidates[i].Empty() {
			continue
		}
		name, area, ok := r.sanitizer.Pick(candidates[i])
		if !ok {
			logging.Trace(r.logger, "candidate rejected by sanitizer", "provider", prov.Name())
			continue
		}

		accuracy := AccuracyMedium
		if prov.Trust() == geocode.TrustHigh {
			accuracy = AccuracyHigh
		}
		return &ResolvedLocation{
			Name:        name,
			Area:        area,
			Coordinates: p,
			Source:      SourceExternalGeocoder,
			Accuracy:    accuracy,
		}
	}

	return nil
}
