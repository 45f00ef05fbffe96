package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	ListPath    = "/api/cryptos"
	HistoryPath = "/api/crypto/%s/history"
)

// RequestFailedError reports a non-2xx response.
type RequestFailedError struct {
	Status int
	URL    string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// FetchJSON performs a single GET and decodes the body into out.
// Any non-2xx status yields a *RequestFailedError.
func FetchJSON(ctx context.Context, client *http.Client, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CryptoTracker/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestFailedError{Status: resp.StatusCode, URL: rawURL}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// Client talks to the CryptoTracker backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a backend client. A zero timeout means none.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListCryptos fetches the coin list. A missing data field is an empty list.
func (c *Client) ListCryptos(ctx context.Context) ([]Coin, error) {
	var env listEnvelope
	if err := FetchJSON(ctx, c.HTTPClient, c.BaseURL+ListPath, &env); err != nil {
		return nil, err
	}
	return validCoins(env.Data), nil
}

// CoinHistory fetches the price series of one coin. A missing data or
// prices field is an empty series.
func (c *Client) CoinHistory(ctx context.Context, id string) ([]PricePoint, error) {
	var env historyEnvelope
	u := c.BaseURL + fmt.Sprintf(HistoryPath, url.PathEscape(id))
	if err := FetchJSON(ctx, c.HTTPClient, u, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []PricePoint{}, nil
	}
	return PricePoints(env.Data.Prices), nil
}
