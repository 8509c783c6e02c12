// Package risk provides per-position stop management and the
// process-wide daily loss limit. Price comparisons use decimals so a
// stop set at 99.005 never flaps against a float tick at 99.00499...
package risk

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"alphatick/internal/logger"
	"alphatick/internal/types"
)

// StopLevel tracks one position's protective stop. The stop only
// ratchets in the position's favor.
type StopLevel struct {
	Symbol       string
	Side         types.TradeSide
	EntryPrice   float64
	StopPrice    float64
	ATRMult      float64
	HighestPrice float64 // for LONG trailing
	LowestPrice  float64 // for SHORT trailing
}

// PositionRiskManager owns the stop levels for every open position.
type PositionRiskManager struct {
	mu      sync.Mutex
	stops   map[string]*StopLevel
	atrMult float64
}

func NewPositionRiskManager(atrMult float64) *PositionRiskManager {
	if atrMult <= 0 {
		atrMult = 2.0
	}
	return &PositionRiskManager{
		stops:   make(map[string]*StopLevel),
		atrMult: atrMult,
	}
}

// SetStop installs the initial stop for a position: entry -/+ atr*mult
// depending on side, rounded to cents.
func (m *PositionRiskManager) SetStop(symbol string, side types.TradeSide, entry, atr float64) *StopLevel {
	m.mu.Lock()
	defer m.mu.Unlock()

	distance := decimal.NewFromFloat(atr).Mul(decimal.NewFromFloat(m.atrMult))
	entryDec := decimal.NewFromFloat(entry)

	var stop decimal.Decimal
	if side == types.SideLong {
		stop = entryDec.Sub(distance)
	} else {
		stop = entryDec.Add(distance)
	}

	level := &StopLevel{
		Symbol:       symbol,
		Side:         side,
		EntryPrice:   entry,
		StopPrice:    stop.Round(2).InexactFloat64(),
		ATRMult:      m.atrMult,
		HighestPrice: entry,
		LowestPrice:  entry,
	}
	m.stops[symbol] = level
	logger.Infof("risk: %s %s stop set at %.2f (entry %.2f, atr %.4f)",
		symbol, side, level.StopPrice, entry, atr)
	return level
}

// UpdateTrailingStop ratchets the stop with price. A LONG stop only
// rises, a SHORT stop only falls. Returns the updated level or an error
// if the symbol has no stop.
func (m *PositionRiskManager) UpdateTrailingStop(symbol string, price, atr float64) (*StopLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	level, ok := m.stops[symbol]
	if !ok {
		return nil, fmt.Errorf("no stop registered for %s", symbol)
	}

	distance := decimal.NewFromFloat(atr).Mul(decimal.NewFromFloat(level.ATRMult))
	current := decimal.NewFromFloat(level.StopPrice)

	if level.Side == types.SideLong {
		if price > level.HighestPrice {
			level.HighestPrice = price
		}
		candidate := decimal.NewFromFloat(level.HighestPrice).Sub(distance).Round(2)
		if candidate.GreaterThan(current) {
			level.StopPrice = candidate.InexactFloat64()
			logger.Debugf("risk: %s stop raised to %.2f", symbol, level.StopPrice)
		}
	} else {
		if price < level.LowestPrice {
			level.LowestPrice = price
		}
		candidate := decimal.NewFromFloat(level.LowestPrice).Add(distance).Round(2)
		if candidate.LessThan(current) {
			level.StopPrice = candidate.InexactFloat64()
			logger.Debugf("risk: %s stop lowered to %.2f", symbol, level.StopPrice)
		}
	}
	return level, nil
}

// CheckStop reports whether price has crossed the stop. It never acts on
// the position; the trading loop owns the exit.
func (m *PositionRiskManager) CheckStop(symbol string, price float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	level, ok := m.stops[symbol]
	if !ok {
		return false
	}
	priceDec := decimal.NewFromFloat(price)
	stopDec := decimal.NewFromFloat(level.StopPrice)
	if level.Side == types.SideLong {
		return priceDec.LessThanOrEqual(stopDec)
	}
	return priceDec.GreaterThanOrEqual(stopDec)
}

// Stop returns the current level for a symbol, or nil.
func (m *PositionRiskManager) Stop(symbol string) *StopLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops[symbol]
}

// ClearStop removes the level when a position is closed.
func (m *PositionRiskManager) ClearStop(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stops, symbol)
}
