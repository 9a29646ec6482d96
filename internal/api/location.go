package api

import (
	"net/http"

	"safaigo/pkg/resolver"
)

// LocationHandler serves resolution requests.
type LocationHandler struct {
	resolver *resolver.Resolver
}

// NewLocationHandler creates a LocationHandler.
func NewLocationHandler(r *resolver.Resolver) *LocationHandler {
	return &LocationHandler{resolver: r}
}

// HandleResolve resolves ?lat=..&lon=.. into a named location.
func (h *LocationHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	p, err := parsePoint(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	loc, err := h.resolver.Resolve(r.Context(), p)
	if err != nil {
		// Resolve only fails on invalid coordinates, which parsePoint
		// already rejects; treat anything else as a bad request too.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, loc)
}
