package imageproxy

import (
	"io"
	"net/http"
	"time"
)

// Route is the path the internal proxy handler is mounted on.
const Route = "/_image"

// Handler proxies an image fetch through to its upstream URL after
// verifying the request's signature, grounded on
// original_source/src/server/image_proxy.rs's handler().
type Handler struct {
	Signer *Signer
	Client *http.Client
}

// NewHandler builds a Handler with a dedicated short-timeout client;
// image proxying should fail fast rather than hold a connection open.
func NewHandler(signer *Signer) *Handler {
	return &Handler{
		Signer: signer,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	imageURL := q.Get("url")
	sig := q.Get("sig")
	if imageURL == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}
	if sig == "" {
		http.Error(w, "missing signature", http.StatusUnauthorized)
		return
	}

	cfg := Config{
		Referer:   Referer(q.Get("referer")),
		UserAgent: UserAgent(q.Get("user_agent")),
		Proxy:     q.Get("proxy"),
	}
	if !h.Signer.Verify(cfg, imageURL, sig) {
		http.Error(w, "bad signature", http.StatusForbidden)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, imageURL, nil)
	if err != nil {
		http.Error(w, "invalid image url", http.StatusBadGateway)
		return
	}

	if ua := cfg.UserAgent.Value(r.Header.Get("User-Agent")); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if referer, err := cfg.Referer.Value(imageURL); err == nil && referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		w.WriteHeader(resp.StatusCode)
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, resp.Body)
}
