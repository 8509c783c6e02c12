// Package market holds the market-data plumbing: candle history for
// indicator preheating, tick feeds, and the order book source the
// execution layer reads from.
package market

import "context"

// Candle is one finished bar of any interval.
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Trades    int64   `json:"trades"`
}

// CandleStore keeps historical bars per symbol and interval.
type CandleStore interface {
	Get(ctx context.Context, symbol, interval string) ([]Candle, error)
	Put(ctx context.Context, symbol, interval string, candles []Candle, max int) error
}
