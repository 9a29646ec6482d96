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

// DefaultBigDataCloudURL is the BigDataCloud API host.
const DefaultBigDataCloudURL = "https://api.bigdatacloud.net"

// bigDataCloud adapts the BigDataCloud reverse-geocode endpoints. Without
// an API key the free client endpoint is used.
type bigDataCloud struct {
	client  *request.Client
	tracker *tracker.Tracker
	baseURL string
	apiKey  string
	timeout time.Duration
	trust   Trust
}

func newBigDataCloud(cfg ProviderConfig, rc *request.Client, tr *tracker.Tracker) *bigDataCloud {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBigDataCloudURL
	}
	return &bigDataCloud{
		client:  rc,
		tracker: tr,
		baseURL: base,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		trust:   cfg.Trust,
	}
}

func (b *bigDataCloud) Name() string           { return "bigdatacloud" }
func (b *bigDataCloud) Trust() Trust           { return b.trust }
func (b *bigDataCloud) Timeout() time.Duration { return b.timeout }

type bigDataCloudResponse struct {
	Locality             string `json:"locality"`
	City                 string `json:"city"`
	PrincipalSubdivision string `json:"principalSubdivision"`
}

func (b *bigDataCloud) ReverseGeocode(ctx context.Context, p geo.Point) (Candidate, error) {
	endpoint := "/data/reverse-geocode-client"
	if b.apiKey != "" {
		endpoint = "/data/reverse-geocode"
	}

	u, err := url.Parse(b.baseURL + endpoint)
	if err != nil {
		return Candidate{}, fmt.Errorf("bigdatacloud: invalid base url: %w", err)
	}

	q := u.Query()
	q.Set("latitude", fmt.Sprintf("%f", p.Lat))
	q.Set("longitude", fmt.Sprintf("%f", p.Lon))
	q.Set("localityLanguage", "en")
	if b.apiKey != "" {
		q.Set("key", b.apiKey)
	}
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	body, err := b.client.Get(ctx, u.String())
	if err != nil {
		return Candidate{}, fmt.Errorf("bigdatacloud: %w", err)
	}

	var resp bigDataCloudResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Candidate{}, fmt.Errorf("bigdatacloud: malformed response: %w", err)
	}

	c := Candidate{
		Locality:    resp.Locality,
		City:        resp.City,
		Subdivision: resp.PrincipalSubdivision,
		Provider:    b.Name(),
	}
	if c.Empty() {
		b.tracker.TrackAPIZero(b.Name())
	}
	return c, nil
}
