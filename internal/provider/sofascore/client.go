// Package sofascore provides the HTTP client for the SofaScore API as exposed
// through RapidAPI.
//
// RapidAPI uses header-based auth (X-RapidAPI-Key / X-RapidAPI-Host) and
// SofaScore paginates match lists with a zero-based page index and a
// hasNextPage flag.
package sofascore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/bolao/internal/provider"
)

const (
	defaultBaseURL = "https://sofascore.p.rapidapi.com"
	defaultHost    = "sofascore.p.rapidapi.com"

	// maxPages bounds the hasNextPage loop.
	maxPages = 50
)

// ResponseCache stores raw provider responses. Implementations must be safe
// for concurrent use; a miss is reported with ok=false.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
}

// Client is the HTTP client for SofaScore endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiHost    string
	limiter    *rate.Limiter
	cache      ResponseCache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// NewClient creates a SofaScore HTTP client with rate limiting.
func NewClient(apiKey, apiHost string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if apiHost == "" {
		apiHost = defaultHost
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		apiHost:    apiHost,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// WithBaseURL points the client at a different server (tests, proxies).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// WithCache enables response caching for JSON endpoints.
func (c *Client) WithCache(cache ResponseCache, ttl time.Duration) *Client {
	c.cache = cache
	c.cacheTTL = ttl
	return c
}

func (c *Client) cacheKey(path string, params url.Values) string {
	return "sofascore:" + path + "?" + params.Encode()
}

// get performs a rate-limited GET request and returns the raw JSON body.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}

	key := c.cacheKey(path, params)
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, key); ok {
			return body, nil
		}
	}

	body, _, err := c.do(ctx, path, params)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && c.cacheTTL > 0 {
		c.cache.Set(ctx, key, body, c.cacheTTL)
	}
	return body, nil
}

// do issues the request and returns body and content type. Responses are
// never cached here.
func (c *Client) do(ctx context.Context, path string, params url.Values) ([]byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response body: %w", err)
	}

	c.logger.Debug("sofascore request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", fmt.Errorf("sofascore %s: %w", path, provider.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, "", fmt.Errorf("sofascore %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// pageResponse is the wrapper used by the match list endpoints.
type pageResponse struct {
	Events      []json.RawMessage `json:"events"`
	HasNextPage bool              `json:"hasNextPage"`
}

// getPaginated fetches every page of a match list endpoint.
func (c *Client) getPaginated(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}

	var all []json.RawMessage
	for page := 0; page < maxPages; page++ {
		params.Set("pageIndex", strconv.Itoa(page))
		body, err := c.get(ctx, path, params)
		if err != nil {
			// Past the last page SofaScore answers 404 instead of an empty list.
			if page > 0 && isNotFound(err) {
				break
			}
			return nil, err
		}

		var resp pageResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode %s page %d: %w", path, page, err)
		}
		all = append(all, resp.Events...)

		if !resp.HasNextPage {
			break
		}
	}

	return all, nil
}

// truncate returns a truncated string for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
