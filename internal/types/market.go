// Package types holds the shared data model passed by value between the
// pipeline components: market data, orders, positions and execution
// telemetry. Everything here is a plain struct; components own their own
// mutable state and exchange immutable copies of these.
package types

import "time"

// Tick is a single OHLCV market update. Immutable once created.
type Tick struct {
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Quote is a normalized broker quote.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderBookLevel is a single depth level, bid or ask.
type OrderBookLevel struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Orders   int     `json:"orders,omitempty"`
}

// OrderBookSnapshot is a point-in-time view of market depth. Bids and asks
// are ordered best-first.
type OrderBookSnapshot struct {
	Symbol    string           `json:"symbol"`
	Bids      []OrderBookLevel `json:"bids"`
	Asks      []OrderBookLevel `json:"asks"`
	Timestamp time.Time        `json:"timestamp"`
}

// BidVolume sums visible bid quantity.
func (s OrderBookSnapshot) BidVolume() int64 {
	var total int64
	for _, lvl := range s.Bids {
		total += lvl.Quantity
	}
	return total
}

// AskVolume sums visible ask quantity.
func (s OrderBookSnapshot) AskVolume() int64 {
	var total int64
	for _, lvl := range s.Asks {
		total += lvl.Quantity
	}
	return total
}

// IndicatorSnapshot is the full set of indicator values produced for one
// tick. Created fresh on every update and never mutated afterwards.
type IndicatorSnapshot struct {
	// Trend
	SMA20 float64 `json:"sma_20"`
	SMA50 float64 `json:"sma_50"`
	EMA9  float64 `json:"ema_9"`
	EMA21 float64 `json:"ema_21"`
	EMA55 float64 `json:"ema_55"`

	// Momentum
	RSI        float64 `json:"rsi"`
	MACDLine   float64 `json:"macd_line"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_hist"`

	// Volatility
	ATR          float64 `json:"atr"`
	KeltnerUpper float64 `json:"keltner_upper"`
	KeltnerMid   float64 `json:"keltner_mid"`
	KeltnerLower float64 `json:"keltner_lower"`

	// Volume
	OBV  float64 `json:"obv"`
	VWAP float64 `json:"vwap"`

	// Close carried through so downstream scoring does not need the tick.
	Close float64 `json:"close"`

	// Binary flags
	PriceAboveSMA20 bool `json:"price_above_sma20"`
	EMA9Above21     bool `json:"ema_9_gt_21"`
	MACDPositive    bool `json:"macd_positive"`
	RSIOversold     bool `json:"rsi_oversold"`
	RSIOverbought   bool `json:"rsi_overbought"`
	PriceAboveVWAP  bool `json:"price_above_vwap"`
}
