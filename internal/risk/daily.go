package risk

import (
	"sync"

	"github.com/shopspring/decimal"

	"alphatick/internal/logger"
)

// DailyLimitTracker accumulates realized P&L and latches trading off
// once the daily loss limit is hit. The latch is one-way: only Reset,
// called at the session boundary, re-enables trading. It is shared
// across every symbol loop, hence the mutex.
type DailyLimitTracker struct {
	mu         sync.Mutex
	capital    decimal.Decimal
	maxLossPct decimal.Decimal
	realized   decimal.Decimal
	halted     bool
	trades     int
}

// NewDailyLimitTracker builds a tracker for the given capital and loss
// percentage (e.g. 2.0 means trading halts at -2% of capital).
func NewDailyLimitTracker(capital, maxLossPct float64) *DailyLimitTracker {
	return &DailyLimitTracker{
		capital:    decimal.NewFromFloat(capital),
		maxLossPct: decimal.NewFromFloat(maxLossPct),
	}
}

// RecordPnL adds a realized trade result. If cumulative P&L breaches the
// limit the tracker latches halted.
func (t *DailyLimitTracker) RecordPnL(pnl float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.realized = t.realized.Add(decimal.NewFromFloat(pnl))
	t.trades++
	if t.halted {
		return
	}
	if t.realized.LessThanOrEqual(t.limit()) {
		t.halted = true
		logger.Warnf("risk: daily loss limit hit, realized %s against limit %s; trading halted until reset",
			t.realized.StringFixed(2), t.limit().StringFixed(2))
	}
}

// TradingAllowed reports whether new entries may be opened.
func (t *DailyLimitTracker) TradingAllowed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.halted
}

// RealizedPnL returns today's cumulative realized P&L.
func (t *DailyLimitTracker) RealizedPnL() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.realized.InexactFloat64()
}

// TradeCount returns the number of results recorded today.
func (t *DailyLimitTracker) TradeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trades
}

// Reset clears the day's P&L and releases the halt. Call at the start
// of each session.
func (t *DailyLimitTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.realized = decimal.Zero
	t.trades = 0
	t.halted = false
	logger.Infof("risk: daily limit tracker reset")
}

// limit is the negative threshold: -capital * maxLossPct / 100.
func (t *DailyLimitTracker) limit() decimal.Decimal {
	return t.capital.Mul(t.maxLossPct).Div(decimal.NewFromInt(100)).Neg()
}
