package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"safaigo/pkg/tracker"
)

func testClient() (*Client, *tracker.Tracker) {
	tr := tracker.New()
	c := New(Options{
		Timeout:   2 * time.Second,
		Retries:   3,
		BaseDelay: 5 * time.Millisecond,
		RPS:       1000, // effectively unthrottled for tests
	}, tr)
	return c, tr
}

func TestGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, tr := testClient()
	body, err := c.Get(context.Background(), srv.URL+"/reverse")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("Get() body = %s", body)
	}

	stats := tr.Snapshot()
	for _, s := range stats {
		if s.APISuccess != 1 {
			t.Errorf("expected 1 success, got %+v", s)
		}
	}
}

func TestGetRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, _ := testClient()
	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Get() body = %s", body)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestGetClientErrorNoRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, tr := testClient()
	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatal("Get() expected error for 404")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("404 must not be retried, got %d attempts", calls)
	}

	stats := tr.Snapshot()
	for _, s := range stats {
		if s.APIFailures != 1 {
			t.Errorf("expected 1 failure, got %+v", s)
		}
	}
}

func TestGetContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c, _ := testClient()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Get(ctx, srv.URL); err == nil {
		t.Fatal("Get() expected error after context timeout")
	}
}

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"nominatim.openstreetmap.org", "nominatim"},
		{"openstreetmap.org", "nominatim"},
		{"api.bigdatacloud.net", "bigdatacloud"},
		{"api-bdc.io.bigdatacloud.net", "bigdatacloud"},
		{"example.com", "example.com"},
	}

	for _, tt := range tests {
		if got := normalizeProvider(tt.host); got != tt.want {
			t.Errorf("normalizeProvider(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
