// Package cmc is a minimal CoinMarketCap Pro API client.
package cmc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://pro-api.coinmarketcap.com"
	listingsPath   = "/v1/cryptocurrency/listings/latest"
	apiKeyHeader   = "X-CMC_PRO_API_KEY"

	// bodyPreviewLen is how many characters of an error body are kept for diagnostics.
	bodyPreviewLen = 200
)

var (
	ErrMissingAPIKey = errors.New("CMC_API_KEY is not set")
	ErrEmptyListings = errors.New("listings response has no data")
)

// StatusError is returned for any non-200 answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

type Quote struct {
	Price decimal.Decimal `json:"price"`
}

type Listing struct {
	ID     int64            `json:"id"`
	Name   string           `json:"name"`
	Symbol string           `json:"symbol"`
	Quote  map[string]Quote `json:"quote"`
}

// Price returns the quote in the given currency.
func (l Listing) Price(currency string) (decimal.Decimal, bool) {
	q, ok := l.Quote[currency]
	return q.Price, ok
}

type listingsResponse struct {
	Data []Listing `json:"data"`
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the per-request timeout; zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: timeout}
	}
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestListings fetches the top `limit` listings quoted in `convert`.
func (c *Client) LatestListings(ctx context.Context, limit int, convert string) ([]Listing, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("convert", convert)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+listingsPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       lo.Substring(string(body), 0, bodyPreviewLen),
		}
	}

	var result listingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, ErrEmptyListings
	}

	return result.Data, nil
}
