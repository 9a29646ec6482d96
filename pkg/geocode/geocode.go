// Package geocode wraps external reverse-geocoding services behind a
// common candidate shape. Each provider has its own response parser; the
// resolver only ever sees normalized candidates.
package geocode

import (
	"context"
	"fmt"
	"time"

	"safaigo/pkg/geo"
	"safaigo/pkg/request"
	"safaigo/pkg/tracker"
)

// Trust expresses how much confidence a provider's answers deserve.
// It maps onto the accuracy tier of resolved locations.
type Trust string

const (
	TrustHigh   Trust = "high"
	TrustMedium Trust = "medium"
)

// Candidate is the normalized output of one provider for one coordinate.
// Transient: created per request, discarded after use.
type Candidate struct {
	Locality    string
	City        string
	Subdivision string
	Road        string
	Provider    string
}

// Empty reports whether the provider returned nothing usable at all.
func (c Candidate) Empty() bool {
	return c.Locality == "" && c.City == "" && c.Subdivision == "" && c.Road == ""
}

// Provider is one external reverse-geocoding service.
type Provider interface {
	Name() string
	Trust() Trust
	Timeout() time.Duration

	// ReverseGeocode resolves a coordinate into a candidate. A service
	// that answers but knows nothing about the point returns an empty
	// candidate and no error.
	ReverseGeocode(ctx context.Context, p geo.Point) (Candidate, error)
}

// ProviderConfig describes one configured provider.
type ProviderConfig struct {
	Name    string
	BaseURL string
	Timeout time.Duration
	Trust   Trust
	APIKey  string
}

// DefaultTimeout bounds a single provider call when none is configured.
const DefaultTimeout = 4 * time.Second

// NewProvider builds the adapter matching cfg.Name.
func NewProvider(cfg ProviderConfig, rc *request.Client, tr *tracker.Tracker) (Provider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Trust == "" {
		cfg.Trust = TrustMedium
	}

	switch cfg.Name {
	case "nominatim":
		return newNominatim(cfg, rc, tr), nil
	case "bigdatacloud":
		return newBigDataCloud(cfg, rc, tr), nil
	default:
		return nil, fmt.Errorf("unknown geocoding provider %q", cfg.Name)
	}
}
