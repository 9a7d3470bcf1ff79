// Command diagnose_feeds fetches every configured endpoint's source
// directly (bypassing the filter pipeline) and reports whether it
// parses as a feed, how many items it carries, and how long it took.
// Useful for spot-checking a feedgate.yaml before deploying it.
package main

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"feedgate/internal/config"
)

// FeedDiagnostic is the result of probing a single configured source.
type FeedDiagnostic struct {
	Path         string `json:"path"`
	URL          string `json:"url"`
	Status       string `json:"status"` // "OK", "HTTP_ERROR", "PARSE_ERROR", "EMPTY", "TIMEOUT", "SKIPPED"
	HTTPCode     int    `json:"http_code"`
	ItemCount    int    `json:"item_count"`
	FeedType     string `json:"feed_type"` // "RSS", "ATOM", "UNKNOWN"
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

type rssDoc struct {
	Channel struct {
		Items []struct {
			Title string `xml:"title"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomDoc struct {
	Entries []struct {
		Title string `xml:"title"`
	} `xml:"entry"`
}

func main() {
	path := flag.String("config", "feedgate.yaml", "path to the gateway config file")
	timeout := flag.Duration("timeout", 30*time.Second, "per-source fetch timeout")
	flag.Parse()

	appCfg, err := config.LoadAppConfig(*path)
	if err != nil {
		log.Fatalf("failed to load config %s: %v", *path, err)
	}

	diagnostics := make([]FeedDiagnostic, 0, len(appCfg.Endpoints))
	for _, ep := range appCfg.Endpoints {
		url := sourceURL(ep.Source)
		if url == "" {
			diagnostics = append(diagnostics, FeedDiagnostic{
				Path:   ep.Path,
				Status: "SKIPPED",
				ErrorMessage: "source is not a directly-fetchable absolute_url/relative_url " +
					"(dynamic, templated, or from_scratch sources need a live request to resolve)",
			})
			continue
		}
		log.Printf("diagnosing %s -> %s", ep.Path, url)
		diagnostics = append(diagnostics, diagnoseFeed(ep.Path, url, *timeout))
	}

	report(diagnostics)
}

// sourceURL extracts a directly-fetchable URL from a source config,
// or "" if the source needs request-time context to resolve.
func sourceURL(src *config.SourceConfig) string {
	if src == nil || src.Kind != "absolute_url" {
		return ""
	}
	var url string
	if err := src.Raw.Decode(&url); err != nil {
		return ""
	}
	return url
}

func diagnoseFeed(path, url string, timeout time.Duration) FeedDiagnostic {
	diag := FeedDiagnostic{Path: path, URL: url}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		diag.Status = "REQUEST_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}
	req.Header.Set("User-Agent", "feedgate-diagnose/1.0")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	diag.ResponseTime = time.Since(start).Milliseconds()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
		} else {
			diag.Status = "HTTP_ERROR"
		}
		diag.ErrorMessage = err.Error()
		return diag
	}
	defer func() { _ = resp.Body.Close() }()

	diag.HTTPCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return diag
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		diag.Status = "READ_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	itemCount, feedType, err := parseFeed(body)
	diag.FeedType = feedType
	if err != nil {
		diag.Status = "PARSE_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}
	diag.ItemCount = itemCount
	if itemCount == 0 {
		diag.Status = "EMPTY"
		return diag
	}
	diag.Status = "OK"
	return diag
}

func parseFeed(body []byte) (itemCount int, feedType string, err error) {
	var rss rssDoc
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		return len(rss.Channel.Items), "RSS", nil
	}

	var atom atomDoc
	if err := xml.Unmarshal(body, &atom); err == nil && len(atom.Entries) > 0 {
		return len(atom.Entries), "ATOM", nil
	}

	preview := string(body)
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return 0, "UNKNOWN", fmt.Errorf("could not parse as RSS or Atom, body starts: %s", preview)
}

func report(diagnostics []FeedDiagnostic) {
	var ok, broken int
	for _, d := range diagnostics {
		if d.Status == "OK" {
			ok++
		} else if d.Status != "SKIPPED" {
			broken++
		}
	}

	fmt.Printf("diagnosed %d endpoints: %d ok, %d broken, %d skipped\n",
		len(diagnostics), ok, broken, len(diagnostics)-ok-broken)
	for _, d := range diagnostics {
		fmt.Printf("  %-20s %-8s %s\n", d.Path, d.Status, d.ErrorMessage)
	}

	f, err := os.Create("feed_diagnostic_report.json")
	if err != nil {
		log.Printf("failed to write JSON report: %v", err)
		return
	}
	defer func() { _ = f.Close() }()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(diagnostics); err != nil {
		log.Printf("failed to encode JSON report: %v", err)
	}
}
