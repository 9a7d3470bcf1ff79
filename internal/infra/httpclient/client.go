// Package httpclient implements the HTTP client wrapper: operator-
// controlled request headers, a timed-LRU response cache, and
// feed-format content-type sniffing. Grounded on the
// teacher's internal/infra/scraper/rss.go (gofeed + circuit breaker +
// retry) and internal/infra/fetcher/{config.go,url_validation.go}
// (SSRF validation, size-limited reads).
package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"feedgate/internal/domain/feed"
	"feedgate/internal/resilience/circuitbreaker"
	"feedgate/internal/resilience/retry"
	"feedgate/pkg/lru"
)

// Config configures one Client instance — one per endpoint, since each
// endpoint may declare its own ClientConfig.
type Config struct {
	UserAgent      string
	Accept         string
	Headers        map[string]string
	Timeout        time.Duration
	MaxBodySize    int64
	DenyPrivateIPs bool

	ResponseCacheSize int
	ResponseCacheTTL  time.Duration

	// PerHostRPS caps outbound requests per second to a single host;
	// 0 disables throttling.
	PerHostRPS float64
}

// DefaultConfig returns the client defaults used when an endpoint's
// ClientConfig is absent or partially specified.
func DefaultConfig() Config {
	return Config{
		UserAgent:         "feedgate/1.0",
		Timeout:           30 * time.Second,
		MaxBodySize:       10 * 1024 * 1024,
		DenyPrivateIPs:    true,
		ResponseCacheSize: 100,
		ResponseCacheTTL:  10 * time.Minute,
	}
}

// CachedResponse is the value stored in (and returned from) the
// response cache; Get returns a defensive copy so callers can mutate
// their own slice without corrupting the cached entry.
type CachedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r CachedResponse) clone() CachedResponse {
	body := make([]byte, len(r.Body))
	copy(body, r.Body)
	return CachedResponse{StatusCode: r.StatusCode, ContentType: r.ContentType, Body: body}
}

// Client performs GETs with operator-controlled headers through a
// timed-LRU response cache, circuit breaker, and retry, matching the
// reliability idiom of internal/infra/scraper/rss.go.
type Client struct {
	cfg            Config
	httpClient     *http.Client
	cache          *lru.TimedLRU[string, CachedResponse]
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// New builds a Client from cfg, defaulting any unset fields.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		cache:          lru.New[string, CachedResponse](cfg.ResponseCacheSize, cfg.ResponseCacheTTL),
		circuitBreaker: circuitbreaker.New(circuitbreaker.SourceFetchConfig()),
		retryConfig:    retry.SourceFetchConfig(),
		limiters:       make(map[string]*rate.Limiter),
	}
}

// hostLimiter returns the per-host token bucket for rawURL's host,
// creating one lazily on first use. Returns nil when PerHostRPS is 0.
func (c *Client) hostLimiter(rawURL string) *rate.Limiter {
	if c.cfg.PerHostRPS <= 0 {
		return nil
	}
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	c.limiterMu.Lock()
	defer c.limiterMu.Unlock()
	lim, ok := c.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(c.cfg.PerHostRPS), 1)
		c.limiters[host] = lim
	}
	return lim
}

// Get performs a GET against url, consulting the response cache first.
// On a cache hit within TTL it returns a cloned cached entry; on a
// miss, it fetches, stores, and returns.
func (c *Client) Get(ctx context.Context, url string) (CachedResponse, error) {
	if cached, ok := c.cache.Get(url); ok {
		return cached.clone(), nil
	}

	resp, err := c.fetchWithResilience(ctx, url)
	if err != nil {
		return CachedResponse{}, err
	}
	c.cache.Insert(url, resp)
	return resp.clone(), nil
}

func (c *Client) fetchWithResilience(ctx context.Context, url string) (CachedResponse, error) {
	var resp CachedResponse
	err := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, cbErr := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx, url)
		})
		if cbErr != nil {
			return cbErr
		}
		resp = result.(CachedResponse)
		return nil
	})
	if err != nil {
		return CachedResponse{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return resp, nil
}

func (c *Client) doFetch(ctx context.Context, rawURL string) (CachedResponse, error) {
	if err := validateURL(rawURL, c.cfg.DenyPrivateIPs); err != nil {
		return CachedResponse{}, err
	}

	if lim := c.hostLimiter(rawURL); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return CachedResponse{}, fmt.Errorf("%w: rate limit wait: %v", ErrFetch, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return CachedResponse{}, fmt.Errorf("%w: building request: %v", ErrFetch, err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Accept != "" {
		req.Header.Set("Accept", c.cfg.Accept)
	}
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return CachedResponse{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return CachedResponse{}, &StatusError{URL: rawURL, StatusCode: httpResp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, c.cfg.MaxBodySize+1))
	if err != nil {
		return CachedResponse{}, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	if int64(len(body)) > c.cfg.MaxBodySize {
		return CachedResponse{}, fmt.Errorf("%w: response exceeds %d bytes", ErrFetch, c.cfg.MaxBodySize)
	}

	return CachedResponse{
		StatusCode:  httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// FetchFeed retrieves url and parses it as a feed, sniffing format
// from Content-Type: rss/xml-flavored types try RSS first then fall
// back to Atom; atom+xml tries Atom first; anything else tries both
// and reports both failures.
func (c *Client) FetchFeed(ctx context.Context, url string) (feed.Feed, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return feed.Feed{}, err
	}

	primary, fallback := sniffFormat(resp.ContentType)

	f, err := feed.Parse(resp.Body, primary)
	if err == nil {
		return f, nil
	}
	firstErr := err

	f, err = feed.Parse(resp.Body, fallback)
	if err == nil {
		return f, nil
	}

	return feed.Feed{}, fmt.Errorf("%w: as %s: %v; as %s: %v", ErrParse, primary, firstErr, fallback, err)
}

func sniffFormat(contentType string) (primary, fallback feed.Format) {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "atom+xml"):
		return feed.FormatAtom, feed.FormatRSS
	case strings.Contains(ct, "rss+xml"), strings.Contains(ct, "text/xml"), strings.Contains(ct, "application/xml"):
		return feed.FormatRSS, feed.FormatAtom
	default:
		return feed.FormatRSS, feed.FormatAtom
	}
}
