// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	Request   RequestConfig   `yaml:"request"`
	Geocoder  GeocoderConfig  `yaml:"geocoder"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Proximity ProximityConfig `yaml:"proximity"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// RequestConfig holds HTTP client settings for outbound provider calls.
type RequestConfig struct {
	Retries    int      `yaml:"retries"`
	Timeout    Duration `yaml:"timeout"`
	BaseDelay  Duration `yaml:"base_delay"`
	RatePerSec float64  `yaml:"rate_per_sec"` // per-provider request rate
	UserAgent  string   `yaml:"user_agent"`
}

// ProviderConfig holds settings for one reverse-geocoding provider.
// The order of the providers list is the candidate selection priority.
type ProviderConfig struct {
	Name    string   `yaml:"name"`
	BaseURL string   `yaml:"base_url"`
	Enabled bool     `yaml:"enabled"`
	Timeout Duration `yaml:"timeout"`
	Trust   string   `yaml:"trust"` // high, medium
	Key     string   `yaml:"key"`
}

// GeocoderConfig holds the ordered provider list.
type GeocoderConfig struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// ResolverConfig holds the distance thresholds of the resolution chain.
type ResolverConfig struct {
	MediumRadius       Distance `yaml:"medium_radius"`
	NearFallbackRadius Distance `yaml:"near_fallback_radius"`
}

// ProximityConfig holds the presentation tiers for nearby-bin lists.
type ProximityConfig struct {
	LocalRadius  Distance `yaml:"local_radius"`
	NearbyRadius Distance `yaml:"nearby_radius"`
}

// CatalogConfig points at the region catalog data file. An empty path
// means the catalog embedded in the binary.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:8025",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/safaigo.db",
		},
		Request: RequestConfig{
			Retries:    3,
			Timeout:    Duration(10 * time.Second),
			BaseDelay:  Duration(500 * time.Millisecond),
			RatePerSec: 1, // Nominatim usage policy
		},
		Geocoder: GeocoderConfig{
			Providers: []ProviderConfig{
				{
					Name:    "nominatim",
					Enabled: true,
					Timeout: Duration(4 * time.Second),
					Trust:   "medium",
				},
				{
					Name:    "bigdatacloud",
					Enabled: true,
					Timeout: Duration(4 * time.Second),
					Trust:   "medium",
				},
			},
		},
		Resolver: ResolverConfig{
			MediumRadius:       Distance(1000),
			NearFallbackRadius: Distance(5000),
		},
		Proximity: ProximityConfig{
			LocalRadius:  Distance(1000),
			NearbyRadius: Distance(3000),
		},
		Catalog: CatalogConfig{
			Path: "", // embedded catalog
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		// API keys from env as a fallback (never saved back to disk)
		for i := range cfg.Geocoder.Providers {
			p := &cfg.Geocoder.Providers[i]
			if p.Name == "bigdatacloud" && p.Key == "" {
				if key := os.Getenv("BIGDATACLOUD_API_KEY"); key != "" {
					p.Key = key
				}
			}
		}

		if err := validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	seen := make(map[string]bool)
	for _, p := range cfg.Geocoder.Providers {
		if p.Name == "" {
			return fmt.Errorf("geocoder provider without a name")
		}
		if seen[p.Name] {
			return fmt.Errorf("geocoder provider %q configured twice", p.Name)
		}
		seen[p.Name] = true
		if p.Trust != "" && p.Trust != "high" && p.Trust != "medium" {
			return fmt.Errorf("geocoder provider %q: invalid trust %q", p.Name, p.Trust)
		}
	}
	if cfg.Proximity.LocalRadius > cfg.Proximity.NearbyRadius {
		return fmt.Errorf("proximity local_radius larger than nearby_radius")
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# SafaiGo Configuration
# --------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers)

`)
	data = append(header, data...)

	// Inject comments for Enum fields
	reTrust := regexp.MustCompile(`(?m)^(\s+)trust:`)
	data = reTrust.ReplaceAll(data, []byte("${1}# Options: high, medium\n${1}trust:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}

// EnabledProviders returns the providers with enabled=true, preserving
// configuration order.
func (g *GeocoderConfig) EnabledProviders() []ProviderConfig {
	var out []ProviderConfig
	for _, p := range g.Providers {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}
