// Package rates fetches reference exchange rates from the Frankfurter API.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Frankfurter endpoint.
	DefaultBaseURL = "https://api.frankfurter.app"
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("rates: rate limited")
	// ErrUnknownCurrency indicates the API rejected a currency code.
	ErrUnknownCurrency = errors.New("rates: unknown currency")
)

// Client fetches exchange rates.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// NewClient creates a client for baseURL, or the public API when empty.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		now:     time.Now,
	}
}

// Latest returns today's reference rates for base, optionally limited to
// the currencies in to.
func (c *Client) Latest(ctx context.Context, base string, to ...string) (Table, error) {
	q := url.Values{}
	q.Set("from", strings.ToUpper(base))
	if len(to) > 0 {
		q.Set("to", strings.ToUpper(strings.Join(to, ",")))
	}

	body, err := c.get(ctx, "/latest?"+q.Encode())
	if err != nil {
		return Table{}, err
	}

	var raw LatestResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Table{}, fmt.Errorf("rates: parsing latest: %w", err)
	}
	return toTable(raw, c.now()), nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("rates: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/piggymobile/piggy/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return nil, ErrUnknownCurrency
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rates: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("rates: reading response: %w", err)
	}
	return body, nil
}
