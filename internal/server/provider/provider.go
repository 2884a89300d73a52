// Package provider is the HTTP client for the external recipe API.
// Calls are stateless and independent; the client applies a bounded
// timeout and a process-wide rate limit so a slow or throttled provider
// degrades into typed errors instead of hung handlers.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// ErrUnavailable indicates the provider failed, timed out, or returned a
// non-success status. Safe for the end client to retry; never retried here.
var ErrUnavailable = errors.New("recipe provider unavailable")

const defaultTimeout = 5 * time.Second

// Metrics receives the outcome of every provider round trip.
type Metrics interface {
	RecordProviderCall(status int, d time.Duration)
}

type Client struct {
	baseURL    string
	appID      string
	appKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    Metrics
}

type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit caps outbound provider calls.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// WithMetrics attaches a call-outcome recorder.
func WithMetrics(m Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(baseURL, appID, appKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		appID:      appID,
		appKey:     appKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Hits []struct {
		Recipe map[string]any `json:"recipe"`
	} `json:"hits"`
}

// Search queries the provider and returns the raw recipe objects so the
// handler can relay everything the provider sent. Empty optional
// parameters are omitted from the query string.
func (c *Client) Search(ctx context.Context, query, cuisineType, maxTime string) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("type", "public")
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)
	q.Set("q", query)
	if cuisineType != "" {
		q.Set("cuisineType", cuisineType)
	}
	if maxTime != "" {
		q.Set("time", maxTime)
	}
	var body searchResponse
	if err := c.getJSON(ctx, "/api/recipes/v2", q, &body); err != nil {
		return nil, err
	}
	recipes := make([]map[string]any, 0, len(body.Hits))
	for _, hit := range body.Hits {
		recipes = append(recipes, hit.Recipe)
	}
	return recipes, nil
}

type lookupResponse struct {
	Recipe map[string]any `json:"recipe"`
}

// RecipeByID fetches a single recipe object by the provider's external id.
func (c *Client) RecipeByID(ctx context.Context, id string) (map[string]any, error) {
	q := url.Values{}
	q.Set("type", "public")
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)
	var body lookupResponse
	if err := c.getJSON(ctx, "/api/recipes/v2/"+url.PathEscape(id), q, &body); err != nil {
		return nil, err
	}
	if body.Recipe == nil {
		return nil, fmt.Errorf("%w: empty recipe body", ErrUnavailable)
	}
	return body.Recipe, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(0, time.Since(start))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.record(resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) record(status int, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordProviderCall(status, d)
	}
}
