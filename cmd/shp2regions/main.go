// Command shp2regions converts a ward-boundary shapefile into the region
// catalog YAML format. Each polygon becomes one region with its bounding
// box and centroid.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gopkg.in/yaml.v3"
)

type regionOut struct {
	Name string     `yaml:"name"`
	Area string     `yaml:"area,omitempty"`
	Lat  float64    `yaml:"lat"`
	Lon  float64    `yaml:"lon"`
	Box  [4]float64 `yaml:"box,flow"`
}

type catalogOut struct {
	Version         int         `yaml:"version"`
	Label           string      `yaml:"label"`
	DefaultRadiusKm float64     `yaml:"default_radius_km"`
	Regions         []regionOut `yaml:"regions"`
}

func main() {
	inputPath := flag.String("input", "", "Path to input .shp file")
	outputPath := flag.String("output", "", "Path to output .yaml file")
	nameField := flag.String("name-field", "WARD_NAME", "Attribute holding the region name")
	areaField := flag.String("area-field", "ZONE_NAME", "Attribute holding the administrative area")
	label := flag.String("label", "Delhi", "Catalog label for the covered metro area")
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		flag.Usage()
		log.Fatal("Input and output paths are required")
	}

	if err := run(*inputPath, *outputPath, *nameField, *areaField, *label); err != nil {
		log.Fatal(err)
	}
}

func run(inputPath, outputPath, nameField, areaField, label string) error {
	shape, err := shp.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer shape.Close()

	// Locate the attribute columns
	nameIdx, areaIdx := -1, -1
	for i, f := range shape.Fields() {
		switch f.String() {
		case nameField:
			nameIdx = i
		case areaField:
			areaIdx = i
		}
	}
	if nameIdx < 0 {
		return fmt.Errorf("attribute %q not found in shapefile", nameField)
	}

	cat := catalogOut{
		Version:         1,
		Label:           label,
		DefaultRadiusKm: 2.5,
	}

	for shape.Next() {
		n, p := shape.Shape()

		poly, ok := p.(*shp.Polygon)
		if !ok {
			log.Printf("Skipping non-polygon shape: %T", p)
			continue
		}

		ring := convertRing(poly)
		if len(ring) < 3 {
			continue
		}

		bound := ring.Bound()
		centroid, _ := planar.CentroidArea(ring)
		// A degenerate ring yields a zero centroid; fall back to the
		// bound center.
		if centroid[0] == 0 && centroid[1] == 0 {
			centroid = bound.Center()
		}

		name := shape.ReadAttribute(n, nameIdx)
		if name == "" {
			continue
		}
		area := ""
		if areaIdx >= 0 {
			area = shape.ReadAttribute(n, areaIdx)
		}

		cat.Regions = append(cat.Regions, regionOut{
			Name: name,
			Area: area,
			Lat:  centroid[1],
			Lon:  centroid[0],
			Box:  [4]float64{bound.Min[1], bound.Min[0], bound.Max[1], bound.Max[0]},
		})
	}

	if err := shape.Err(); err != nil {
		return fmt.Errorf("error iterating shapes: %w", err)
	}
	if len(cat.Regions) == 0 {
		return fmt.Errorf("no usable polygons in %s", inputPath)
	}

	data, err := yaml.Marshal(cat)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Printf("Wrote %d regions to %s\n", len(cat.Regions), outputPath)
	return nil
}

// convertRing flattens the polygon's outer parts into a single ring.
// Ward shapes are simple enough that holes don't matter for a bounding
// box and centroid.
func convertRing(s *shp.Polygon) orb.Ring {
	ring := make(orb.Ring, 0, len(s.Points))
	for _, pt := range s.Points {
		ring = append(ring, orb.Point{pt.X, pt.Y})
	}
	return ring
}
