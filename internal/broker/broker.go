// Package broker defines the adapter surface the engine trades
// through. Implementations translate the engine's orders into a
// concrete venue; the paper subpackage simulates one in memory.
package broker

import (
	"context"

	"alphatick/internal/types"
)

// Adapter is the broker contract. All calls take a context so an
// engine shutdown can abandon a slow venue mid-call.
type Adapter interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	GetQuote(ctx context.Context, symbol string) (types.Quote, error)
	GetOrderBookSnapshot(ctx context.Context, symbol string) (types.OrderBookSnapshot, error)

	PlaceOrder(ctx context.Context, order types.Order) (types.OrderResponse, error)
	CancelOrder(ctx context.Context, orderID string) error

	GetPositions(ctx context.Context) ([]types.Position, error)
	GetAccountBalance(ctx context.Context) (float64, error)
}
