package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"safaigo/pkg/geo"
	"safaigo/pkg/request"
	"safaigo/pkg/tracker"
)

// DefaultNominatimURL is the public OSM Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// nominatim adapts the OSM Nominatim /reverse endpoint.
type nominatim struct {
	client  *request.Client
	tracker *tracker.Tracker
	baseURL string
	timeout time.Duration
	trust   Trust
}

func newNominatim(cfg ProviderConfig, rc *request.Client, tr *tracker.Tracker) *nominatim {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultNominatimURL
	}
	return &nominatim{
		client:  rc,
		tracker: tr,
		baseURL: base,
		timeout: cfg.Timeout,
		trust:   cfg.Trust,
	}
}

func (n *nominatim) Name() string           { return "nominatim" }
func (n *nominatim) Trust() Trust           { return n.trust }
func (n *nominatim) Timeout() time.Duration { return n.timeout }

// nominatimResponse is the subset of the jsonv2 reverse response we read.
type nominatimResponse struct {
	Error   string `json:"error"`
	Address struct {
		Neighbourhood string `json:"neighbourhood"`
		Suburb        string `json:"suburb"`
		Road          string `json:"road"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		StateDistrict string `json:"state_district"`
		County        string `json:"county"`
		State         string `json:"state"`
	} `json:"address"`
}

func (n *nominatim) ReverseGeocode(ctx context.Context, p geo.Point) (Candidate, error) {
	u, err := url.Parse(n.baseURL + "/reverse")
	if err != nil {
		return Candidate{}, fmt.Errorf("nominatim: invalid base url: %w", err)
	}

	q := u.Query()
	q.Set("lat", fmt.Sprintf("%f", p.Lat))
	q.Set("lon", fmt.Sprintf("%f", p.Lon))
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("zoom", "16") // neighborhood-level detail
	q.Set("accept-language", "en")
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	body, err := n.client.Get(ctx, u.String())
	if err != nil {
		return Candidate{}, fmt.Errorf("nominatim: %w", err)
	}

	var resp nominatimResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Candidate{}, fmt.Errorf("nominatim: malformed response: %w", err)
	}

	// Nominatim reports "Unable to geocode" with a 200 status
	if resp.Error != "" {
		n.tracker.TrackAPIZero(n.Name())
		return Candidate{Provider: n.Name()}, nil
	}

	addr := resp.Address
	c := Candidate{
		Locality:    firstNonEmpty(addr.Neighbourhood, addr.Suburb),
		City:        firstNonEmpty(addr.City, addr.Town, addr.Village),
		Subdivision: firstNonEmpty(addr.StateDistrict, addr.County, addr.State),
		Road:        addr.Road,
		Provider:    n.Name(),
	}
	if c.Empty() {
		n.tracker.TrackAPIZero(n.Name())
	}
	return c, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
