package tracker

import (
	"sync"
	"testing"
)

func TestTracker(t *testing.T) {
	tr := New()
	provider := "nominatim"

	tr.TrackAPISuccess(provider)
	tr.TrackAPISuccess(provider)
	tr.TrackAPIFailure(provider)
	tr.TrackAPIZero(provider)

	stats := tr.Snapshot()
	pStats, ok := stats[provider]
	if !ok {
		t.Fatalf("Expected stats for provider %q", provider)
	}

	if pStats.APISuccess != 2 {
		t.Errorf("Expected 2 APISuccess, got %d", pStats.APISuccess)
	}
	if pStats.APIFailures != 1 {
		t.Errorf("Expected 1 APIFailure, got %d", pStats.APIFailures)
	}
	if pStats.APIZeroResult != 1 {
		t.Errorf("Expected 1 APIZeroResult, got %d", pStats.APIZeroResult)
	}
}

func TestTrackerUnknownProvider(t *testing.T) {
	tr := New()
	stats := tr.Snapshot()
	if len(stats) != 0 {
		t.Errorf("Expected empty snapshot, got %d entries", len(stats))
	}
}

func TestTrackerConcurrent(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackAPISuccess("bigdatacloud")
			tr.TrackAPIFailure("nominatim")
		}()
	}
	wg.Wait()

	stats := tr.Snapshot()
	if stats["bigdatacloud"].APISuccess != 50 {
		t.Errorf("Expected 50 successes, got %d", stats["bigdatacloud"].APISuccess)
	}
	if stats["nominatim"].APIFailures != 50 {
		t.Errorf("Expected 50 failures, got %d", stats["nominatim"].APIFailures)
	}
}
