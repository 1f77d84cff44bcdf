// Package cheapshark implements the deals-catalog provider against the
// CheapShark API. It owns all knowledge of the upstream wire format; the
// rest of the system only sees normalized domain deals.
package cheapshark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"game-deals-service/internal/domain/deals"
	"game-deals-service/internal/providers"
)

// Config controls how the cheapshark client reaches the upstream API.
type Config struct {
	BaseURL    string
	PageSize   int
	HTTPClient *http.Client
}

// Client fetches deal rows from the CheapShark API and maps them to domain
// models. It does no throttling or retrying itself; wrap it with the
// provider decorators for that.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient httpDoer
}

// NewClient constructs a cheapshark client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		pageSize:   resolvePageSize(cfg.PageSize),
		httpClient: resolveHTTPClient(cfg.HTTPClient),
	}
}

// SearchDeals queries /deals with the title as a free-text filter. The
// upstream returns one row per (game, store) pair.
func (c *Client) SearchDeals(ctx context.Context, title string) ([]deals.Deal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/deals", nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Set("title", title)
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	req.URL.RawQuery = q.Encode()

	var payload []dealResponse
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	result := make([]deals.Deal, 0, len(payload))
	for _, d := range payload {
		result = append(result, mapDeal(d))
	}
	return result, nil
}

// FetchStores retrieves the storeID -> storeName directory, skipping
// inactive stores.
func (c *Client) FetchStores(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stores", nil)
	if err != nil {
		return nil, err
	}

	var payload []storeResponse
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	stores := make(map[string]string, len(payload))
	for _, s := range payload {
		if s.IsActive == 0 {
			continue
		}
		stores[s.StoreID] = s.StoreName
	}
	return stores, nil
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &providers.RateLimitError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    "cheapshark rate limited",
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("cheapshark: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}

// parseRetryAfter reads a Retry-After header, accepting both delta-seconds
// and HTTP-date forms. Zero means the server gave no usable hint.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
