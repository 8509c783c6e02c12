// Package execution estimates market impact, picks an execution
// strategy, and slices large orders into TWAP or VWAP schedules.
package execution

import (
	"time"

	"github.com/google/uuid"

	"alphatick/internal/types"
)

// ChildOrder is one slice of a parent order's schedule.
type ChildOrder struct {
	ID          string
	ParentID    string
	Sequence    int
	Quantity    int64
	ReleaseAt   time.Time
	Filled      bool
	FillPrice   float64
	SlippageBps float64
}

// ParentOrder tracks a sliced order across its children.
type ParentOrder struct {
	ID             string
	Symbol         string
	Signal         types.TradeSignal
	Strategy       types.ExecutionStrategy
	TotalQuantity  int64
	FilledQuantity int64
	AvgFillPrice   float64
	TargetPrice    float64
	Children       []*ChildOrder
	CreatedAt      time.Time
	Complete       bool
}

func newParentOrder(symbol string, sig types.TradeSignal, strategy types.ExecutionStrategy, qty int64, target float64) *ParentOrder {
	return &ParentOrder{
		ID:            uuid.NewString(),
		Symbol:        symbol,
		Signal:        sig,
		Strategy:      strategy,
		TotalQuantity: qty,
		TargetPrice:   target,
		CreatedAt:     time.Now(),
	}
}

// RemainingQuantity is what is still unfilled.
func (p *ParentOrder) RemainingQuantity() int64 {
	rem := p.TotalQuantity - p.FilledQuantity
	if rem < 0 {
		return 0
	}
	return rem
}

// TotalSlippageBps is the quantity-weighted slippage over filled children.
func (p *ParentOrder) TotalSlippageBps() float64 {
	var weighted float64
	var qty int64
	for _, c := range p.Children {
		if !c.Filled {
			continue
		}
		weighted += c.SlippageBps * float64(c.Quantity)
		qty += c.Quantity
	}
	if qty == 0 {
		return 0
	}
	return weighted / float64(qty)
}

// recordFill applies a child fill and rolls the parent's averages.
func (p *ParentOrder) recordFill(child *ChildOrder, price float64) {
	child.Filled = true
	child.FillPrice = price
	if p.TargetPrice > 0 {
		diff := price - p.TargetPrice
		if diff < 0 {
			diff = -diff
		}
		child.SlippageBps = diff / p.TargetPrice * 10000
	}

	prevQty := p.FilledQuantity
	p.FilledQuantity += child.Quantity
	if p.FilledQuantity > 0 {
		p.AvgFillPrice = (p.AvgFillPrice*float64(prevQty) + price*float64(child.Quantity)) / float64(p.FilledQuantity)
	}
	if p.FilledQuantity >= p.TotalQuantity {
		p.Complete = true
	}
}
