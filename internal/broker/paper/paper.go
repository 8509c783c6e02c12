// Package paper is an in-memory broker for paper trading and tests.
// Orders fill instantly at the driven price; positions net out by
// symbol and realized P&L accrues to the cash balance.
package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"alphatick/internal/logger"
	"alphatick/internal/market"
	"alphatick/internal/types"
)

const (
	// quote half-spread and synthetic book jitter, as fractions of price
	quoteSpread = 0.0001
)

// Adapter simulates a broker. Drive it with SetPrice (usually from the
// same tick stream the engine consumes) and it fills at that price.
type Adapter struct {
	mu        sync.Mutex
	connected bool
	balance   float64
	prices    map[string]float64
	lastTick  map[string]types.Tick
	positions map[string]*types.Position
	realized  float64
	fills     int
}

func NewAdapter(startingBalance float64) *Adapter {
	return &Adapter{
		balance:   startingBalance,
		prices:    make(map[string]float64),
		lastTick:  make(map[string]types.Tick),
		positions: make(map[string]*types.Position),
	}
}

// SetPrice drives the simulated market for a symbol.
func (a *Adapter) SetPrice(symbol string, price float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prices[symbol] = price
	if pos, ok := a.positions[symbol]; ok {
		pos.CurrentPrice = price
	}
}

// ObserveTick drives both the price and the synthetic book.
func (a *Adapter) ObserveTick(tick types.Tick) {
	a.SetPrice(tick.Symbol, tick.Close)
	a.mu.Lock()
	a.lastTick[tick.Symbol] = tick
	a.mu.Unlock()
}

func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connected = true
	logger.Infof("paper: connected with balance %.2f", a.balance)
	return nil
}

func (a *Adapter) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connected = false
	return nil
}

func (a *Adapter) GetQuote(ctx context.Context, symbol string) (types.Quote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	price, ok := a.prices[symbol]
	if !ok {
		return types.Quote{}, fmt.Errorf("paper: no price for %s", symbol)
	}
	return types.Quote{
		Symbol:    symbol,
		Price:     price,
		Bid:       price * (1 - quoteSpread),
		Ask:       price * (1 + quoteSpread),
		Volume:    a.lastTick[symbol].Volume,
		Timestamp: time.Now(),
	}, nil
}

func (a *Adapter) GetOrderBookSnapshot(ctx context.Context, symbol string) (types.OrderBookSnapshot, error) {
	a.mu.Lock()
	tick, ok := a.lastTick[symbol]
	a.mu.Unlock()
	if !ok {
		return types.OrderBookSnapshot{}, fmt.Errorf("paper: no tick history for %s", symbol)
	}
	return market.SynthesizeBook(tick), nil
}

// PlaceOrder fills immediately at the driven price (or the limit price
// for LIMIT orders, which the simulator treats as marketable).
func (a *Adapter) PlaceOrder(ctx context.Context, order types.Order) (types.OrderResponse, error) {
	started := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.connected {
		return types.OrderResponse{}, fmt.Errorf("paper: not connected")
	}
	if order.Quantity <= 0 {
		return rejected(order, "quantity must be positive"), nil
	}
	price, ok := a.prices[order.Symbol]
	if !ok {
		return rejected(order, "no market price"), nil
	}
	if order.Type == types.OrderLimit && order.Price > 0 {
		price = order.Price
	}

	a.apply(order, price)
	a.fills++

	return types.OrderResponse{
		OrderID:        uuid.NewString(),
		Status:         types.StatusFilled,
		Symbol:         order.Symbol,
		Side:           order.Side,
		Quantity:       order.Quantity,
		FilledPrice:    price,
		FilledQuantity: order.Quantity,
		Timestamp:      time.Now(),
		LatencyMs:      time.Since(started).Milliseconds(),
	}, nil
}

// apply nets the fill into the symbol's position and realizes P&L on
// any reduction.
func (a *Adapter) apply(order types.Order, price float64) {
	pos, ok := a.positions[order.Symbol]
	if !ok || pos.Quantity == 0 {
		a.positions[order.Symbol] = &types.Position{
			ID:           uuid.NewString(),
			Symbol:       order.Symbol,
			Side:         order.Side,
			Quantity:     order.Quantity,
			EntryPrice:   price,
			CurrentPrice: price,
			EntryTime:    time.Now(),
		}
		return
	}

	if pos.Side == order.Side {
		// add: blend the entry
		total := pos.Quantity + order.Quantity
		pos.EntryPrice = (pos.EntryPrice*float64(pos.Quantity) + price*float64(order.Quantity)) / float64(total)
		pos.Quantity = total
		pos.CurrentPrice = price
		return
	}

	// reduce or flip
	closed := order.Quantity
	if closed > pos.Quantity {
		closed = pos.Quantity
	}
	direction := 1.0
	if pos.Side == types.SideShort {
		direction = -1.0
	}
	pnl := direction * (price - pos.EntryPrice) * float64(closed)
	a.realized += pnl
	a.balance += pnl
	logger.Debugf("paper: %s closed %d @ %.2f, pnl %.2f", order.Symbol, closed, price, pnl)

	remaining := order.Quantity - closed
	pos.Quantity -= closed
	if pos.Quantity == 0 {
		if remaining > 0 {
			a.positions[order.Symbol] = &types.Position{
				ID:           uuid.NewString(),
				Symbol:       order.Symbol,
				Side:         order.Side,
				Quantity:     remaining,
				EntryPrice:   price,
				CurrentPrice: price,
				EntryTime:    time.Now(),
			}
		} else {
			delete(a.positions, order.Symbol)
		}
	}
}

// CancelOrder is a no-op because fills are immediate.
func (a *Adapter) CancelOrder(ctx context.Context, orderID string) error {
	return nil
}

func (a *Adapter) GetPositions(ctx context.Context) ([]types.Position, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.Position, 0, len(a.positions))
	for _, pos := range a.positions {
		out = append(out, *pos)
	}
	return out, nil
}

func (a *Adapter) GetAccountBalance(ctx context.Context) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance, nil
}

// RealizedPnL is the simulator's cumulative closed P&L.
func (a *Adapter) RealizedPnL() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.realized
}

// FillCount reports how many orders have filled.
func (a *Adapter) FillCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fills
}

func rejected(order types.Order, msg string) types.OrderResponse {
	return types.OrderResponse{
		OrderID:   uuid.NewString(),
		Status:    types.StatusRejected,
		Symbol:    order.Symbol,
		Side:      order.Side,
		Quantity:  order.Quantity,
		Message:   msg,
		Timestamp: time.Now(),
	}
}
