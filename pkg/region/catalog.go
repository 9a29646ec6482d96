// Package region holds the static catalog of named areas and the
// coordinate matching logic over it. The catalog is loaded once at startup
// and treated as immutable afterwards; no locking is needed because there
// are no writers after Load.
package region

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"safaigo/pkg/geo"
)

//go:embed regions.yaml
var defaultCatalogYAML []byte

// DefaultAcceptanceRadiusKm is used for regions that do not configure
// their own nearest-match radius.
const DefaultAcceptanceRadiusKm = 2.5

// Region is one named catalog entry approximating a neighborhood.
type Region struct {
	Name     string
	Area     string // parent district, e.g. "Central Delhi"
	Centroid geo.Point
	Bounds   *orb.Bound // nil when only a centroid is known
	RadiusKm float64    // acceptance radius for nearest matching
}

// Contains reports whether the region has a bounding box containing p.
func (r *Region) Contains(p geo.Point) bool {
	return r.Bounds != nil && r.Bounds.Contains(p.Orb())
}

// Catalog is the immutable set of known regions.
type Catalog struct {
	regions []Region
	label   string // generic label for the covered metro area
}

// catalogFile is the on-disk YAML shape of the catalog.
type catalogFile struct {
	Version         int          `yaml:"version"`
	Label           string       `yaml:"label"`
	DefaultRadiusKm float64      `yaml:"default_radius_km"`
	Regions         []regionFile `yaml:"regions"`
}

type regionFile struct {
	Name     string     `yaml:"name"`
	Area     string     `yaml:"area"`
	Lat      float64    `yaml:"lat"`
	Lon      float64    `yaml:"lon"`
	Box      *[4]float64 `yaml:"box"` // lat_min, lon_min, lat_max, lon_max
	RadiusKm float64    `yaml:"radius_km"`
}

// LoadDefault builds the catalog from the embedded data file.
func LoadDefault() (*Catalog, error) {
	return parse(defaultCatalogYAML)
}

// LoadFile builds the catalog from a YAML file on disk. Used when the
// config points at a newer data file than the embedded one.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if len(file.Regions) == 0 {
		return nil, fmt.Errorf("catalog contains no regions")
	}

	defaultRadius := file.DefaultRadiusKm
	if defaultRadius <= 0 {
		defaultRadius = DefaultAcceptanceRadiusKm
	}

	regions := make([]Region, 0, len(file.Regions))
	for _, rf := range file.Regions {
		r := Region{
			Name:     rf.Name,
			Area:     rf.Area,
			Centroid: geo.Point{Lat: rf.Lat, Lon: rf.Lon},
			RadiusKm: rf.RadiusKm,
		}
		if r.Name == "" {
			return nil, fmt.Errorf("catalog region without a name")
		}
		if err := r.Centroid.Validate(); err != nil {
			return nil, fmt.Errorf("region %q: %w", r.Name, err)
		}
		if r.RadiusKm <= 0 {
			r.RadiusKm = defaultRadius
		}

		if rf.Box != nil {
			b := orb.Bound{
				Min: orb.Point{rf.Box[1], rf.Box[0]},
				Max: orb.Point{rf.Box[3], rf.Box[2]},
			}
			if b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] {
				return nil, fmt.Errorf("region %q: inverted bounding box", r.Name)
			}
			// The centroid must lie within its own box, otherwise the
			// catalog entry is inconsistent.
			if !b.Contains(r.Centroid.Orb()) {
				return nil, fmt.Errorf("region %q: centroid outside bounding box", r.Name)
			}
			r.Bounds = &b
		}

		regions = append(regions, r)
	}

	label := file.Label
	if label == "" {
		label = "Delhi"
	}

	return &Catalog{regions: regions, label: label}, nil
}

// Len returns the number of regions in the catalog.
func (c *Catalog) Len() int {
	return len(c.regions)
}

// Label returns the generic name of the metro area the catalog covers.
func (c *Catalog) Label() string {
	return c.label
}

// Regions returns the catalog entries. Callers must not mutate the slice.
func (c *Catalog) Regions() []Region {
	return c.regions
}
