package types

import "time"

// TradeResult is a completed round trip. It feeds the Kelly sizer's
// trailing history and the daily P&L tracker.
type TradeResult struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Side       TradeSide `json:"side"`
	Quantity   int64     `json:"quantity"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	ExitReason string    `json:"exit_reason,omitempty"`
}

// PnL is the realized profit or loss in quote currency.
func (t TradeResult) PnL() float64 {
	mult := 1.0
	if t.Side == SideShort {
		mult = -1.0
	}
	return mult * (t.ExitPrice - t.EntryPrice) * float64(t.Quantity)
}

// IsWinner reports whether the trade closed with positive P&L.
func (t TradeResult) IsWinner() bool { return t.PnL() > 0 }

// IntentToTrade is an externally produced trade suggestion, typically from
// the AI collaborator. Consumed only through the Block-and-Skip entry
// point: the loop re-validates against fresh market data before acting.
type IntentToTrade struct {
	Symbol            string      `json:"symbol"`
	Signal            TradeSignal `json:"signal"`
	Confidence        float64     `json:"confidence"`
	Reasoning         string      `json:"reasoning,omitempty"`
	SuggestedQuantity int64       `json:"suggested_quantity,omitempty"`
	Source            string      `json:"source,omitempty"`
	DecisionTime      time.Time   `json:"decision_time,omitempty"`
	ContextAgeSeconds float64     `json:"context_age_seconds"`
}

// ExecutionMetrics is the flat per-decision telemetry record emitted for
// downstream observability. Latencies are microseconds unless noted.
type ExecutionMetrics struct {
	SignalGenMicros      float64 `json:"signal_gen_us"`
	DataRefreshMicros    float64 `json:"data_refresh_us"`
	SlippageCalcMicros   float64 `json:"slippage_calc_us"`
	OrderSubmitMicros    float64 `json:"order_submit_us"`
	TotalExecutionMicros float64 `json:"total_execution_us"`

	PredictedSlippageBps float64 `json:"predicted_slippage_bps"`
	ActualSlippageBps    float64 `json:"actual_slippage_bps"`

	BrokerLatencyMs int64 `json:"broker_latency_ms"`
}
