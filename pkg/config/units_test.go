package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"10s", 10 * time.Second, false},
		{"1m", 1 * time.Minute, false},
		{"1.5h", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"2d2h", 50 * time.Hour, false},
		{"100ms", 100 * time.Millisecond, false},
		{"", 0, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDuration(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDuration(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"1000m", 1000, false},
		{"2.5km", 2500, false},
		{"1km", 1000, false},
		{"500", 500, false},
		{"", 0, false},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDistance(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDistance(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDistance(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDistance(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestDistanceKm(t *testing.T) {
	d := Distance(2500)
	if d.Km() != 2.5 {
		t.Errorf("Km() = %v, want 2.5", d.Km())
	}
}

func TestDurationYAMLRoundtrip(t *testing.T) {
	type doc struct {
		Timeout Duration `yaml:"timeout"`
	}

	var d doc
	if err := yaml.Unmarshal([]byte("timeout: 2d2h\n"), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Timeout.Std() != 50*time.Hour {
		t.Errorf("Timeout = %v, want 50h", d.Timeout.Std())
	}

	out, err := yaml.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var d2 doc
	if err := yaml.Unmarshal(out, &d2); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if d2.Timeout != d.Timeout {
		t.Errorf("roundtrip mismatch: %v != %v", d2.Timeout, d.Timeout)
	}
}

func TestDistanceYAMLNumeric(t *testing.T) {
	type doc struct {
		Radius Distance `yaml:"radius"`
	}

	var d doc
	if err := yaml.Unmarshal([]byte("radius: 1500\n"), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if float64(d.Radius) != 1500 {
		t.Errorf("Radius = %v, want 1500", d.Radius)
	}

	var d2 doc
	if err := yaml.Unmarshal([]byte("radius: 1.5km\n"), &d2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if float64(d2.Radius) != 1500 {
		t.Errorf("Radius = %v, want 1500", d2.Radius)
	}
}
