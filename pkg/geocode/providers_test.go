package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"safaigo/pkg/geo"
	"safaigo/pkg/request"
	"safaigo/pkg/tracker"
)

func testDeps() (*request.Client, *tracker.Tracker) {
	tr := tracker.New()
	rc := request.New(request.Options{
		Timeout:   2 * time.Second,
		Retries:   1,
		BaseDelay: time.Millisecond,
		RPS:       1000,
	}, tr)
	return rc, tr
}

func TestNominatimReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("format") != "jsonv2" || q.Get("addressdetails") != "1" {
			t.Errorf("missing query parameters: %v", q)
		}
		w.Write([]byte(`{
			"display_name": "Hauz Khas, South Delhi, Delhi, India",
			"address": {
				"neighbourhood": "Hauz Khas",
				"road": "Aurobindo Marg",
				"city": "New Delhi",
				"state_district": "South Delhi",
				"state": "Delhi"
			}
		}`))
	}))
	defer srv.Close()

	rc, tr := testDeps()
	p, err := NewProvider(ProviderConfig{Name: "nominatim", BaseURL: srv.URL, Trust: TrustMedium}, rc, tr)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	c, err := p.ReverseGeocode(context.Background(), geo.Point{Lat: 28.5494, Lon: 77.2001})
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}

	if c.Locality != "Hauz Khas" {
		t.Errorf("Locality = %q, want Hauz Khas", c.Locality)
	}
	if c.Road != "Aurobindo Marg" {
		t.Errorf("Road = %q", c.Road)
	}
	if c.City != "New Delhi" {
		t.Errorf("City = %q", c.City)
	}
	if c.Subdivision != "South Delhi" {
		t.Errorf("Subdivision = %q", c.Subdivision)
	}
	if c.Provider != "nominatim" {
		t.Errorf("Provider = %q", c.Provider)
	}
}

func TestNominatimUnableToGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Unable to geocode"}`))
	}))
	defer srv.Close()

	rc, tr := testDeps()
	p, err := NewProvider(ProviderConfig{Name: "nominatim", BaseURL: srv.URL}, rc, tr)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	c, err := p.ReverseGeocode(context.Background(), geo.Point{Lat: 0, Lon: 0})
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if !c.Empty() {
		t.Errorf("expected empty candidate, got %+v", c)
	}
	if tr.Snapshot()["nominatim"].APIZeroResult != 1 {
		t.Error("expected a zero-result to be tracked")
	}
}

func TestNominatimMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<!doctype html><html>not json</html>`))
	}))
	defer srv.Close()

	rc, tr := testDeps()
	p, _ := NewProvider(ProviderConfig{Name: "nominatim", BaseURL: srv.URL}, rc, tr)

	if _, err := p.ReverseGeocode(context.Background(), geo.Point{Lat: 28.6, Lon: 77.2}); err == nil {
		t.Fatal("expected error for malformed response")
	}
}

func TestNominatimServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rc, tr := testDeps()
	p, _ := NewProvider(ProviderConfig{Name: "nominatim", BaseURL: srv.URL}, rc, tr)

	if _, err := p.ReverseGeocode(context.Background(), geo.Point{Lat: 28.6, Lon: 77.2}); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestBigDataCloudReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/reverse-geocode-client" {
			t.Errorf("unexpected path %q (no API key configured)", r.URL.Path)
		}
		if r.URL.Query().Get("localityLanguage") != "en" {
			t.Errorf("missing localityLanguage: %v", r.URL.Query())
		}
		w.Write([]byte(`{
			"locality": "Karol Bagh",
			"city": "New Delhi",
			"principalSubdivision": "Delhi"
		}`))
	}))
	defer srv.Close()

	rc, tr := testDeps()
	p, err := NewProvider(ProviderConfig{Name: "bigdatacloud", BaseURL: srv.URL, Trust: TrustHigh}, rc, tr)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	c, err := p.ReverseGeocode(context.Background(), geo.Point{Lat: 28.6519, Lon: 77.1907})
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if c.Locality != "Karol Bagh" || c.City != "New Delhi" || c.Subdivision != "Delhi" {
		t.Errorf("unexpected candidate %+v", c)
	}
	if p.Trust() != TrustHigh {
		t.Errorf("Trust() = %q, want high", p.Trust())
	}
}

func TestBigDataCloudKeyedEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/reverse-geocode" {
			t.Errorf("unexpected path %q (API key configured)", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "sekrit" {
			t.Errorf("missing key parameter")
		}
		w.Write([]byte(`{"locality": "Saket"}`))
	}))
	defer srv.Close()

	rc, tr := testDeps()
	p, _ := NewProvider(ProviderConfig{Name: "bigdatacloud", BaseURL: srv.URL, APIKey: "sekrit"}, rc, tr)

	c, err := p.ReverseGeocode(context.Background(), geo.Point{Lat: 28.5245, Lon: 77.21})
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if c.Locality != "Saket" {
		t.Errorf("Locality = %q", c.Locality)
	}
}

func TestNewProviderUnknown(t *testing.T) {
	rc, tr := testDeps()
	if _, err := NewProvider(ProviderConfig{Name: "mapquest"}, rc, tr); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewProviderDefaults(t *testing.T) {
	rc, tr := testDeps()
	p, err := NewProvider(ProviderConfig{Name: "nominatim"}, rc, tr)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if p.Timeout() != DefaultTimeout {
		t.Errorf("Timeout() = %v, want default %v", p.Timeout(), DefaultTimeout)
	}
	if p.Trust() != TrustMedium {
		t.Errorf("Trust() = %q, want medium default", p.Trust())
	}
}
