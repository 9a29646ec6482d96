// Command seedbins loads a YAML list of collection points into the
// database. Existing bins with matching IDs are updated in place.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"safaigo/pkg/db"
	"safaigo/pkg/geo"
	"safaigo/pkg/model"
	"safaigo/pkg/store"
)

type binSeed struct {
	ID   string  `yaml:"id"`
	Name string  `yaml:"name"`
	Ward string  `yaml:"ward"`
	Kind string  `yaml:"kind"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

type seedFile struct {
	Bins []binSeed `yaml:"bins"`
}

func main() {
	inputPath := flag.String("input", "", "Path to bins .yaml file")
	dbPath := flag.String("db", "./data/safaigo.db", "Path to database file")
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		log.Fatal("Input path is required")
	}

	if err := run(*inputPath, *dbPath); err != nil {
		log.Fatal(err)
	}
}

func run(inputPath, dbPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(file.Bins) == 0 {
		return fmt.Errorf("seed file contains no bins")
	}

	dbConn, err := db.Init(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	st := store.NewSQLiteStore(dbConn)
	defer st.Close()

	ctx := context.Background()
	for i, seed := range file.Bins {
		if seed.Name == "" {
			return fmt.Errorf("bin %d: missing name", i)
		}
		p := geo.Point{Lat: seed.Lat, Lon: seed.Lon}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("bin %q: %w", seed.Name, err)
		}

		bin := &model.Bin{
			ID:   seed.ID,
			Name: seed.Name,
			Ward: seed.Ward,
			Kind: model.BinKind(seed.Kind),
			Lat:  seed.Lat,
			Lon:  seed.Lon,
		}
		if err := st.SaveBin(ctx, bin); err != nil {
			return fmt.Errorf("bin %q: %w", seed.Name, err)
		}
	}

	total, err := st.CountBins(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d bins (%d total in database)\n", len(file.Bins), total)
	return nil
}
