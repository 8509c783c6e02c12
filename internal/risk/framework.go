package risk

import "alphatick/internal/types"

// Framework is the facade the trading loop talks to: per-position stops
// plus the shared daily limit behind one surface.
type Framework struct {
	Positions *PositionRiskManager
	Daily     *DailyLimitTracker
}

// Config carries the risk knobs from the config file.
type Config struct {
	ATRStopMult     float64
	Capital         float64
	MaxDailyLossPct float64
}

// NewFramework wires a fresh position manager to a daily tracker. The
// tracker may be shared; see NewFrameworkWithDaily.
func NewFramework(cfg Config) *Framework {
	return &Framework{
		Positions: NewPositionRiskManager(cfg.ATRStopMult),
		Daily:     NewDailyLimitTracker(cfg.Capital, cfg.MaxDailyLossPct),
	}
}

// NewFrameworkWithDaily builds a framework around an existing daily
// tracker so multiple symbol loops count against one limit.
func NewFrameworkWithDaily(atrStopMult float64, daily *DailyLimitTracker) *Framework {
	return &Framework{
		Positions: NewPositionRiskManager(atrStopMult),
		Daily:     daily,
	}
}

// OnEntry installs the protective stop for a freshly opened position.
func (f *Framework) OnEntry(symbol string, side types.TradeSide, entry, atr float64) *StopLevel {
	return f.Positions.SetStop(symbol, side, entry, atr)
}

// OnTick trails the stop and reports whether it was hit.
func (f *Framework) OnTick(symbol string, price, atr float64) bool {
	if _, err := f.Positions.UpdateTrailingStop(symbol, price, atr); err != nil {
		return false
	}
	return f.Positions.CheckStop(symbol, price)
}

// OnExit records the realized result and drops the stop.
func (f *Framework) OnExit(symbol string, pnl float64) {
	f.Positions.ClearStop(symbol)
	f.Daily.RecordPnL(pnl)
}

// EntryAllowed reports whether the daily limit still permits new risk.
func (f *Framework) EntryAllowed() bool {
	return f.Daily.TradingAllowed()
}
