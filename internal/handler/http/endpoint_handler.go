// Package http hosts the gateway's HTTP surface: per-endpoint feed
// serving, the image proxy mount, introspection, health, and metrics.
package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/source"
	"feedgate/internal/observability/logging"
	"feedgate/internal/observability/metrics"
	"feedgate/internal/usecase/endpoint"
)

// EndpointHandler serves one configured endpoint's feed, resolving the
// request's query parameters into an endpoint.Request and writing the
// resulting feed body with the format's Content-Type, per §6's
// response contract.
type EndpointHandler struct {
	Endpoint *endpoint.Endpoint
}

func (h *EndpointHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	req, err := parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := h.Endpoint.Call(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		logger.Error("endpoint call failed",
			"path", h.Endpoint.Path(), "status", status, "error", err)
		metrics.SourceFetchErrorsTotal.WithLabelValues(h.Endpoint.Path()).Inc()
		writeError(w, status, err)
		return
	}

	body, err := feed.Serialize(out)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// parseRequest turns query parameters into an endpoint.Request per
// §6's recognized-parameter list; unrecognized parameters are left in
// RawQuery for onthefly.Scan to classify.
func parseRequest(r *http.Request) (endpoint.Request, error) {
	q := r.URL.Query()
	req := endpoint.Request{
		Source:   q.Get("source"),
		Base:     q.Get("base"),
		RawQuery: r.URL.RawQuery,
	}

	if v := q.Get("limit_posts"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, fmt.Errorf("limit_posts: must be a non-negative integer, got %q", v)
		}
		req.LimitPosts = &n
	}

	skipParam := q.Get("filter_skip")
	if skipParam == "" {
		skipParam = q.Get("pp")
	}
	if skipParam != "" {
		if n, err := strconv.Atoi(skipParam); err == nil {
			req.LimitFilters = &n
		} else {
			skip := map[int]struct{}{}
			for _, part := range strings.Split(skipParam, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				idx, err := strconv.Atoi(part)
				if err != nil {
					return req, fmt.Errorf("filter_skip: must be a comma-separated list of integers, got %q", skipParam)
				}
				skip[idx] = struct{}{}
			}
			req.FilterSkip = skip
		}
	}

	return req, nil
}

// statusFor maps an endpoint.Call error onto §7's taxonomy: SourceError
// categories surface as 400, everything else as 500.
func statusFor(err error) int {
	if errors.Is(err, source.ErrMissingPlaceholder) ||
		errors.Is(err, source.ErrTemplateValidation) ||
		errors.Is(err, source.ErrSourceUnspecified) ||
		errors.Is(err, source.ErrBaseURLNotInferred) ||
		errors.Is(err, source.ErrInvalidTemplate) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError writes the full error chain as the response body in
// plain text, per §6: "500 for other errors; body is the full error
// chain in text."
func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
