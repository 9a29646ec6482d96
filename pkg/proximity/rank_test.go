package proximity

import (
	"testing"

	"safaigo/pkg/geo"
)

type testBin struct {
	ID  string
	Lat float64
	Lon float64
}

func binAt(b testBin) geo.Point {
	return geo.Point{Lat: b.Lat, Lon: b.Lon}
}

func TestRankSortsAscending(t *testing.T) {
	query := geo.Point{Lat: 28.6315, Lon: 77.2167}
	bins := []testBin{
		{ID: "far", Lat: 28.7041, Lon: 77.1025},
		{ID: "close", Lat: 28.6320, Lon: 77.2170},
		{ID: "mid", Lat: 28.6450, Lon: 77.2300},
	}

	ranked := Rank(query, bins, binAt)

	if len(ranked) != 3 {
		t.Fatalf("Rank() returned %d entries, want 3", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].DistanceKm < ranked[i-1].DistanceKm {
			t.Errorf("output not sorted at index %d: %v < %v", i, ranked[i].DistanceKm, ranked[i-1].DistanceKm)
		}
	}
	if ranked[0].Point.ID != "close" || ranked[2].Point.ID != "far" {
		t.Errorf("unexpected order: %v %v %v", ranked[0].Point.ID, ranked[1].Point.ID, ranked[2].Point.ID)
	}
}

func TestRankEmpty(t *testing.T) {
	ranked := Rank(geo.Point{Lat: 28.6, Lon: 77.2}, nil, binAt)
	if len(ranked) != 0 {
		t.Errorf("Rank() on empty input returned %d entries", len(ranked))
	}
}

func TestRankStableOnTies(t *testing.T) {
	query := geo.Point{Lat: 28.6, Lon: 77.2}
	// Identical coordinates: identical distances; input order must hold.
	bins := []testBin{
		{ID: "first", Lat: 28.61, Lon: 77.21},
		{ID: "second", Lat: 28.61, Lon: 77.21},
		{ID: "third", Lat: 28.61, Lon: 77.21},
	}

	ranked := Rank(query, bins, binAt)
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if ranked[i].Point.ID != w {
			t.Errorf("tie order broken at %d: got %q, want %q", i, ranked[i].Point.ID, w)
		}
	}
}

func TestPartition(t *testing.T) {
	ranked := []Ranked[testBin]{
		{Point: testBin{ID: "a"}, DistanceKm: 0.2},
		{Point: testBin{ID: "b"}, DistanceKm: 1.0},
		{Point: testBin{ID: "c"}, DistanceKm: 1.7},
		{Point: testBin{ID: "d"}, DistanceKm: 3.0},
		{Point: testBin{ID: "e"}, DistanceKm: 7.5},
	}

	local, nearby := Partition(ranked, LocalRadiusKm, NearbyRadiusKm)

	if len(local) != 2 || local[0].Point.ID != "a" || local[1].Point.ID != "b" {
		t.Errorf("unexpected local tier: %+v", local)
	}
	if len(nearby) != 2 || nearby[0].Point.ID != "c" || nearby[1].Point.ID != "d" {
		t.Errorf("unexpected nearby tier: %+v", nearby)
	}
}

func TestPartitionEmpty(t *testing.T) {
	local, nearby := Partition[testBin](nil, LocalRadiusKm, NearbyRadiusKm)
	if len(local) != 0 || len(nearby) != 0 {
		t.Error("Partition on empty input must return empty tiers")
	}
}
