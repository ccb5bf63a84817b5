// Package search implements the web-search capability by scraping
// DuckDuckGo's lite HTML interface, which is stable enough for regex
// extraction and needs no API key.
package search

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rogerioferraz/aiquery/internal/agent"
	"github.com/rogerioferraz/aiquery/internal/circuitbreaker"
	"github.com/rogerioferraz/aiquery/internal/metrics"
)

const defaultEndpoint = "https://lite.duckduckgo.com/lite/"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxFetchAttempts bounds the 429 backoff loop so a persistently
// rate-limited endpoint surfaces as a single error instead of hanging the
// stage.
const maxFetchAttempts = 4

// DuckDuckGo is a Searcher backed by the lite HTML endpoint. Requests are
// rate limited to one per second as scrape etiquette; concurrent sessions
// share the limiter. A circuit breaker rejects calls outright while the
// endpoint keeps failing.
type DuckDuckGo struct {
	endpoint   string
	httpc      *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.Breaker
	logger     *zap.Logger
	retryDelay time.Duration
}

// Option configures a DuckDuckGo client.
type Option func(*DuckDuckGo)

// WithEndpoint overrides the scrape endpoint, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(d *DuckDuckGo) { d.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *DuckDuckGo) { d.httpc = c }
}

// NewDuckDuckGo creates a search client with a modest timeout.
func NewDuckDuckGo(logger *zap.Logger, opts ...Option) *DuckDuckGo {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &DuckDuckGo{
		endpoint:   defaultEndpoint,
		httpc:      &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		breaker:    circuitbreaker.New("duckduckgo", circuitbreaker.DefaultSettings(), logger),
		logger:     logger,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search runs query in the given market and returns up to maxResults hits.
// An empty slice means the engine found nothing; any transport problem is
// returned as a single error.
func (d *DuckDuckGo) Search(ctx context.Context, query, market string, maxResults int) ([]agent.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)
	if market != "" {
		form.Set("kl", market)
	}

	var body string
	err := d.breaker.Do(ctx, func() error {
		var ferr error
		body, ferr = d.fetch(ctx, form)
		return ferr
	})
	if err != nil {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	results := parseLiteResults(body, maxResults)
	metrics.SearchRequests.WithLabelValues("ok").Inc()
	metrics.SearchResults.Observe(float64(len(results)))
	d.logger.Debug("search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// fetch posts the form, backing off and retrying on 429 up to
// maxFetchAttempts.
func (d *DuckDuckGo) fetch(ctx context.Context, form url.Values) (string, error) {
	delay := d.retryDelay
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := d.httpc.Do(req)
		if err != nil {
			return "", fmt.Errorf("duckduckgo request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt >= maxFetchAttempts {
				return "", fmt.Errorf("duckduckgo http %d after %d attempts", resp.StatusCode, attempt)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			if delay < 30*time.Second {
				delay *= 2
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return "", fmt.Errorf("duckduckgo http %d", resp.StatusCode)
		}

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		return string(raw), nil
	}
}

var (
	resultLinkRe    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	resultLinkAltRe = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	snippetRe       = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
)

// parseLiteResults extracts title/snippet pairs from the lite result page.
func parseLiteResults(html string, maxResults int) []agent.SearchResult {
	links := resultLinkRe.FindAllStringSubmatch(html, -1)
	if len(links) == 0 {
		links = resultLinkAltRe.FindAllStringSubmatch(html, -1)
	}
	snippets := snippetRe.FindAllStringSubmatch(html, -1)

	var results []agent.SearchResult
	for i, m := range links {
		if len(m) < 3 {
			continue
		}
		title := cleanHTML(m[2])
		if title == "" {
			continue
		}
		body := ""
		if i < len(snippets) && len(snippets[i]) > 1 {
			body = cleanHTML(snippets[i][1])
		}
		results = append(results, agent.SearchResult{Title: title, Body: body})
		if maxResults > 0 && len(results) >= maxResults {
			break
		}
	}
	return results
}

// cleanHTML strips tags and decodes entities, including numeric references
// like the &#176; the lite page uses for degree signs.
func cleanHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}
