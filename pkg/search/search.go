// Package search executes dork queries through the Google Custom Search
// JSON API. Missing credentials or any transport failure degrade to an
// empty result list, never an error, so the scan continues with whatever
// URLs other queries produced.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dorkscan/dorkscan/pkg/defaults"
)

// Client queries the Custom Search API.
type Client struct {
	apiKey     string
	cseID      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a search client. Empty credentials yield a disabled
// client whose Search always returns nil.
func NewClient(apiKey, cseID string) *Client {
	return &Client{
		apiKey:     apiKey,
		cseID:      cseID,
		httpClient: &http.Client{Timeout: defaults.SearchTimeout},
		baseURL:    "https://www.googleapis.com/customsearch/v1",
	}
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool { return c.apiKey != "" && c.cseID != "" }

// Search runs one query and returns up to limit result URLs in API order.
// Returns nil on missing credentials, transport errors, non-200 responses
// and malformed payloads.
func (c *Client) Search(ctx context.Context, query string, limit int) []string {
	if !c.Enabled() {
		return nil
	}
	if limit <= 0 {
		limit = defaults.MaxResultsPerDork
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cseID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var payload struct {
		Items []struct {
			Link string `json:"link"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil
	}

	urls := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.Link != "" {
			urls = append(urls, item.Link)
		}
	}
	return urls
}
