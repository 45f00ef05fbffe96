package api

import "time"

// Coin is one market snapshot as served by GET /api/cryptos.
type Coin struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	MarketCap                float64 `json:"market_cap"`
	Image                    string  `json:"image"`
	TotalVolume              float64 `json:"total_volume"`
}

// HistoryData is the payload of GET /api/crypto/{id}/history.
// Prices holds [timestampMillis, price] pairs.
type HistoryData struct {
	ID     string      `json:"id"`
	Prices [][]float64 `json:"prices"`
}

// PricePoint is a decoded history sample.
type PricePoint struct {
	Time  time.Time
	Price float64
}

type listEnvelope struct {
	Data []Coin `json:"data"`
}

type historyEnvelope struct {
	Data *HistoryData `json:"data"`
}

// validCoins drops entries the dashboard cannot key on.
func validCoins(coins []Coin) []Coin {
	out := make([]Coin, 0, len(coins))
	for _, c := range coins {
		if c.ID == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// PricePoints converts raw pairs, skipping malformed ones. Order is preserved.
func PricePoints(pairs [][]float64) []PricePoint {
	points := make([]PricePoint, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) < 2 {
			continue
		}
		points = append(points, PricePoint{
			Time:  time.UnixMilli(int64(pair[0])),
			Price: pair[1],
		})
	}
	return points
}
