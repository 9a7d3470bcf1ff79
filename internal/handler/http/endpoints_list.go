package http

import (
	"encoding/json"
	"net/http"

	"feedgate/internal/usecase/endpoint"
)

// EndpointsListHandler introspects the registry, reporting every
// configured endpoint's path and note. Useful for a status page or a
// client discovering what this gateway exposes.
type EndpointsListHandler struct {
	Registry *endpoint.Registry
}

type endpointSummary struct {
	Path string `json:"path"`
	Note string `json:"note,omitempty"`
}

func (h *EndpointsListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	eps := h.Registry.List()
	out := make([]endpointSummary, 0, len(eps))
	for _, ep := range eps {
		out = append(out, endpointSummary{Path: ep.Path(), Note: ep.Note()})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}
