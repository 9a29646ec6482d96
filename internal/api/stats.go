package api

import (
	"net/http"

	"safaigo/pkg/store"
	"safaigo/pkg/tracker"
)

// StatsHandler exposes provider counters and store totals.
type StatsHandler struct {
	tracker *tracker.Tracker
	store   store.BinStore
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(t *tracker.Tracker, s store.BinStore) *StatsHandler {
	return &StatsHandler{tracker: t, store: s}
}

// ProviderStatsDTO is the wire form of one provider's counters.
type ProviderStatsDTO struct {
	APISuccess    int64 `json:"api_success"`
	APIZeroResult int64 `json:"api_zero"`
	APIFailures   int64 `json:"api_errors"`
}

// StatsResponse is the /api/stats payload.
type StatsResponse struct {
	Providers map[string]ProviderStatsDTO `json:"providers"`
	TotalBins int                         `json:"total_bins"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	resp := StatsResponse{
		Providers: make(map[string]ProviderStatsDTO),
	}
	for provider, stats := range snapshot {
		resp.Providers[provider] = ProviderStatsDTO{
			APISuccess:    stats.APISuccess,
			APIZeroResult: stats.APIZeroResult,
			APIFailures:   stats.APIFailures,
		}
	}

	if h.store != nil {
		if n, err := h.store.CountBins(r.Context()); err == nil {
			resp.TotalBins = n
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
