// Package quote wraps the external market-data API. Prices gate both
// valuation display and trade validation, so lookups carry a timeout
// and a distinct unavailable error.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNotFound means the provider does not know the symbol.
	ErrNotFound = errors.New("quote: unknown symbol")
	// ErrUnavailable means the provider could not be reached or
	// answered with something other than a quote.
	ErrUnavailable = errors.New("quote: provider unavailable")
)

// Quote is a symbol's current price and display name.
type Quote struct {
	Symbol string
	Name   string
	Price  float64
}

// Service is the lookup contract consumed by the trade engine and the
// quote handlers.
type Service interface {
	Lookup(ctx context.Context, symbol string) (Quote, error)
}

// Client fetches quotes over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a client against the given API base URL.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type quoteResponse struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	LatestPrice float64 `json:"latestPrice"`
}

// Lookup resolves a symbol to its current quote. The symbol is
// upper-cased before the request so callers and storage agree on the
// canonical form.
func (c *Client) Lookup(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, ErrNotFound
	}

	u := fmt.Sprintf("%s/stock/%s/quote?token=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Quote{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return Quote{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if body.LatestPrice <= 0 {
		return Quote{}, ErrNotFound
	}

	return Quote{Symbol: symbol, Name: body.CompanyName, Price: body.LatestPrice}, nil
}
