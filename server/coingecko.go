package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cryptotracker/api"
)

// CoinGecko fetches market data from the CoinGecko v3 API.
type CoinGecko struct {
	BaseURL     string
	VsCurrency  string
	TopLimit    int
	HistoryDays int
	HTTPClient  *http.Client
}

func NewCoinGecko(baseURL, vsCurrency string, topLimit, historyDays int, timeout time.Duration) *CoinGecko {
	return &CoinGecko{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		VsCurrency:  vsCurrency,
		TopLimit:    topLimit,
		HistoryDays: historyDays,
		HTTPClient:  &http.Client{Timeout: timeout},
	}
}

// TopCoins returns the largest coins by market cap, reduced to the fields
// the dashboard shows.
func (c *CoinGecko) TopCoins(ctx context.Context) ([]api.Coin, error) {
	params := url.Values{}
	params.Set("vs_currency", c.VsCurrency)
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(c.TopLimit))
	params.Set("page", "1")
	params.Set("sparkline", "false")

	var coins []api.Coin
	if err := api.FetchJSON(ctx, c.HTTPClient, c.BaseURL+"/coins/markets?"+params.Encode(), &coins); err != nil {
		return nil, err
	}
	if len(coins) > c.TopLimit {
		coins = coins[:c.TopLimit]
	}
	if coins == nil {
		coins = []api.Coin{}
	}
	return coins, nil
}

// History returns [timestampMillis, price] pairs for the configured window.
func (c *CoinGecko) History(ctx context.Context, id string) (*api.HistoryData, error) {
	params := url.Values{}
	params.Set("vs_currency", c.VsCurrency)
	params.Set("days", strconv.Itoa(c.HistoryDays))

	var chart struct {
		Prices [][]float64 `json:"prices"`
	}
	rawURL := c.BaseURL + "/coins/" + url.PathEscape(id) + "/market_chart?" + params.Encode()
	if err := api.FetchJSON(ctx, c.HTTPClient, rawURL, &chart); err != nil {
		return nil, err
	}
	if chart.Prices == nil {
		chart.Prices = [][]float64{}
	}
	return &api.HistoryData{ID: id, Prices: chart.Prices}, nil
}
