// Package yelp is a stateless passthrough over the Yelp business-search API.
// Responses are relayed as opaque JSON; no caching, no retries.
package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrUpstream reports a non-2xx answer from the search API.
type ErrUpstream struct {
	StatusCode int
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("search api returned status %d", e.StatusCode)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// SearchRestaurants forwards a location query to
// GET /businesses/search?location=&categories=restaurants.
func (c *Client) SearchRestaurants(ctx context.Context, location string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("location", location)
	params.Set("categories", "restaurants")

	endpoint := fmt.Sprintf("%s/businesses/search?%s", c.baseURL, params.Encode())
	return c.get(ctx, endpoint)
}

// GetBusiness forwards a per-business detail lookup to GET /businesses/{id}.
func (c *Client) GetBusiness(ctx context.Context, businessID string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/businesses/%s", c.baseURL, url.PathEscape(businessID))
	return c.get(ctx, endpoint)
}

func (c *Client) get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ErrUpstream{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	return json.RawMessage(body), nil
}
