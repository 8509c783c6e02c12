package types

import "time"

// OrderType limits the core to the two order shapes the execution manager
// emits directly. TWAP/VWAP are schedules of these, not broker order types.
type OrderType string

const (
	OrderMarket OrderType = "MARKET"
	OrderLimit  OrderType = "LIMIT"
)

// OrderStatus is the broker-reported lifecycle state of an order.
type OrderStatus string

const (
	StatusPending         OrderStatus = "PENDING"
	StatusFilled          OrderStatus = "FILLED"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusCancelled       OrderStatus = "CANCELLED"
	StatusRejected        OrderStatus = "REJECTED"
)

// Order is what the core hands to a broker adapter. The adapter owns all
// protocol mapping; the core never retries a placement itself.
type Order struct {
	Symbol   string    `json:"symbol"`
	Side     TradeSide `json:"side"`
	Quantity int64     `json:"quantity"`
	Type     OrderType `json:"type"`
	Price    float64   `json:"price,omitempty"` // required for LIMIT
	Tag      string    `json:"tag,omitempty"`
}

// OrderResponse is the normalized result of a placement attempt.
type OrderResponse struct {
	OrderID        string      `json:"order_id"`
	Status         OrderStatus `json:"status"`
	Symbol         string      `json:"symbol"`
	Side           TradeSide   `json:"side"`
	Quantity       int64       `json:"quantity"`
	FilledPrice    float64     `json:"filled_price,omitempty"`
	FilledQuantity int64       `json:"filled_quantity"`
	Message        string      `json:"message,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
	LatencyMs      int64       `json:"latency_ms"`
}

// Filled reports whether the placement resulted in a usable fill.
func (r OrderResponse) Filled() bool {
	return r.Status == StatusFilled || r.Status == StatusPartiallyFilled
}

// Position is a currently held position as the broker sees it.
type Position struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Side         TradeSide `json:"side"`
	Quantity     int64     `json:"quantity"`
	EntryPrice   float64   `json:"entry_price"`
	CurrentPrice float64   `json:"current_price"`
	EntryTime    time.Time `json:"entry_time"`
}

// UnrealizedPnL values the position at the current price.
func (p Position) UnrealizedPnL() float64 {
	mult := 1.0
	if p.Side == SideShort {
		mult = -1.0
	}
	return mult * (p.CurrentPrice - p.EntryPrice) * float64(p.Quantity)
}
