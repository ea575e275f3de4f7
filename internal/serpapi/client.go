// Package serpapi is a minimal client for the SerpAPI search endpoint.
// One client instance is shared by every adapter and the contact finder;
// each caller picks an engine and decodes its own response shape.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oppscout/oppscout/internal/model"
)

// Provider is the rate-limit key shared by every caller of this client.
// The adapters and the contact finder all hit the same endpoint with one
// API key, so they must share one pacing bucket.
const Provider = "serpapi"

// Client calls the SerpAPI /search endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the given SerpAPI endpoint.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// errorResponse is SerpAPI's in-band error shape (returned with HTTP 200 on
// some quota conditions, with non-200 otherwise).
type errorResponse struct {
	Error string `json:"error"`
}

// Search performs one GET /search for the given engine, merging params with
// the API key, and decodes the JSON body into out. Non-2xx statuses are
// returned as *model.HTTPError so retry logic can inspect them.
func (c *Client) Search(ctx context.Context, engine string, params url.Values, out any) error {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("engine", engine)
	q.Set("api_key", c.apiKey)

	reqURL := c.baseURL + "/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("serpapi %s: %w", engine, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("serpapi %s: %w", engine, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("serpapi %s: read body: %w", engine, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("serpapi %s", engine),
		}
	}

	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("serpapi %s: %s", engine, errResp.Error)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("serpapi %s: decode response: %w", engine, err)
	}
	return nil
}

// OrganicResult is one entry of a plain web search. Shared by the
// site-restricted adapter and the contact finder.
type OrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// WebSearchResponse is the subset of the "google" engine response we consume.
type WebSearchResponse struct {
	OrganicResults []OrganicResult `json:"organic_results"`
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
