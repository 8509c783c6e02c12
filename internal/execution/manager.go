package execution

import (
	"fmt"
	"sync"
	"time"

	"alphatick/internal/logger"
	"alphatick/internal/types"
)

// Strategy selection bands, in estimated basis points of impact.
const (
	marketImpactBps = 5.0
	limitImpactBps  = 20.0

	// above this share of visible liquidity, prefer the volume curve
	// over plain time slicing.
	vwapLiquidityRatio = 0.3
)

// ProfileProvider supplies per-symbol slicing parameters. The registry
// in the profilereg subpackage implements it; a nil provider falls back
// to the built-in auto-sizing.
type ProfileProvider interface {
	TWAPProfile(symbol string) TWAPConfig
	VWAPProfile(symbol string) VWAPConfig
}

// Manager selects execution strategies and tracks sliced parent orders.
type Manager struct {
	mu       sync.Mutex
	parents  map[string]*ParentOrder
	profiles ProfileProvider
}

func NewManager(profiles ProfileProvider) *Manager {
	return &Manager{
		parents:  make(map[string]*ParentOrder),
		profiles: profiles,
	}
}

// SelectStrategy maps estimated impact to a strategy. Emergency exits
// always cross the spread; small impact goes straight to market, modest
// impact rests on the book, and anything larger gets sliced.
func SelectStrategy(est SlippageEstimate, emergency bool) types.ExecutionStrategy {
	if emergency {
		return types.ExecMarket
	}
	switch {
	case est.EstimatedBps <= marketImpactBps:
		return types.ExecMarket
	case est.EstimatedBps <= limitImpactBps:
		return types.ExecLimit
	case est.LiquidityRatio > vwapLiquidityRatio:
		return types.ExecVWAP
	default:
		return types.ExecTWAP
	}
}

// Evaluate runs the impact model and picks a strategy in one step.
func (m *Manager) Evaluate(book types.OrderBookSnapshot, sig types.TradeSignal, qty int64, atrPct float64, emergency bool) (SlippageEstimate, types.ExecutionStrategy) {
	est := EstimateSlippage(book, sig, qty, atrPct)
	strategy := SelectStrategy(est, emergency)
	logger.Debugf("execution: qty=%d est=%.1fbps ratio=%.2f -> %s",
		qty, est.EstimatedBps, est.LiquidityRatio, strategy)
	return est, strategy
}

// CreateOrder builds a parent order, slicing it when the strategy calls
// for a schedule. MARKET and LIMIT parents get a single immediate child.
func (m *Manager) CreateOrder(symbol string, sig types.TradeSignal, strategy types.ExecutionStrategy, qty int64, target float64) (*ParentOrder, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("order quantity must be positive, got %d", qty)
	}
	parent := newParentOrder(symbol, sig, strategy, qty, target)
	now := time.Now()

	switch strategy {
	case types.ExecTWAP:
		cfg := TWAPConfig{}
		if m.profiles != nil {
			cfg = m.profiles.TWAPProfile(symbol)
		}
		parent.Children = BuildTWAPSchedule(parent.ID, qty, now, cfg)
	case types.ExecVWAP:
		cfg := VWAPConfig{}
		if m.profiles != nil {
			cfg = m.profiles.VWAPProfile(symbol)
		}
		parent.Children = BuildVWAPSchedule(parent.ID, qty, now, cfg)
	default:
		parent.Children = []*ChildOrder{{
			ID:        parent.ID + "-0",
			ParentID:  parent.ID,
			Quantity:  qty,
			ReleaseAt: now,
		}}
	}

	m.mu.Lock()
	m.parents[parent.ID] = parent
	m.mu.Unlock()

	logger.Infof("execution: %s parent %s created, %d shares over %d slices via %s",
		symbol, parent.ID, qty, len(parent.Children), strategy)
	return parent, nil
}

// RecordFill applies a child fill, updating the parent's averages and
// completion state.
func (m *Manager) RecordFill(parentID, childID string, price float64) (*ParentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	parent, ok := m.parents[parentID]
	if !ok {
		return nil, fmt.Errorf("unknown parent order %s", parentID)
	}
	for _, child := range parent.Children {
		if child.ID != childID {
			continue
		}
		if child.Filled {
			return nil, fmt.Errorf("child %s already filled", childID)
		}
		parent.recordFill(child, price)
		return parent, nil
	}
	return nil, fmt.Errorf("child %s not found under parent %s", childID, parentID)
}

// Order returns a tracked parent by ID.
func (m *Manager) Order(id string) (*ParentOrder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parents[id]
	return p, ok
}

// Release removes a completed or abandoned parent from tracking.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.parents, id)
}
