// Package kelly sizes positions with the Kelly Criterion over a trailing
// trade-history window, scaled down to a fractional Kelly for safety.
//
//	f* = (b*p - q) / b   where b = avgWin/avgLoss, p = win rate, q = 1-p
package kelly

import "alphatick/internal/types"

// Result is the sizing recommendation for one prospective trade.
type Result struct {
	FullKelly       float64 // raw Kelly fraction, floored at 0
	FractionalKelly float64 // safety-scaled and capped
	RiskAmount      float64 // capital to put at risk
	Shares          int64   // share count from risk / per-share risk
	WinRate         float64
	AvgWin          float64
	AvgLoss         float64
	OddsRatio       float64
	TradesAnalyzed  int
	IsActive        bool // false until the minimum trade history exists
}

// Config tunes the sizer. Zero values fall back to the defaults used
// across the engine.
type Config struct {
	SafetyFraction float64 // fraction of full Kelly to use, default 0.25
	MinTrades      int     // history required before Kelly activates, default 20
	MaxPositionPct float64 // hard cap on the fraction, default 0.10
	Lookback       int     // trailing window size, default 100
}

func (c *Config) applyDefaults() {
	if c.SafetyFraction <= 0 {
		c.SafetyFraction = 0.25
	}
	if c.MinTrades <= 0 {
		c.MinTrades = 20
	}
	if c.MaxPositionPct <= 0 {
		c.MaxPositionPct = 0.10
	}
	if c.Lookback <= 0 {
		c.Lookback = 100
	}
}

// Sizer keeps the bounded trade history and computes recommendations.
type Sizer struct {
	cfg    Config
	trades []types.TradeResult
}

func NewSizer(cfg Config) *Sizer {
	cfg.applyDefaults()
	return &Sizer{cfg: cfg}
}

// AddTrade records a completed trade in the trailing window.
func (s *Sizer) AddTrade(trade types.TradeResult) {
	s.trades = append(s.trades, trade)
	if len(s.trades) > s.cfg.Lookback {
		s.trades = s.trades[len(s.trades)-s.cfg.Lookback:]
	}
}

// TradeCount returns the number of trades currently in the window.
func (s *Sizer) TradeCount() int { return len(s.trades) }

// Calculate produces the sizing recommendation. Below the minimum trade
// count it returns a conservative fixed 1%-of-capital recommendation with
// IsActive=false instead of an error: a cold sizer is a normal state.
func (s *Sizer) Calculate(capital, entryPrice, stopPrice float64) Result {
	count := len(s.trades)

	if count < s.cfg.MinTrades {
		risk := capital * 0.01
		return Result{
			FullKelly:       0,
			FractionalKelly: 0.01,
			RiskAmount:      risk,
			Shares:          sharesFor(risk, entryPrice, stopPrice),
			WinRate:         0.5,
			OddsRatio:       1,
			TradesAnalyzed:  count,
			IsActive:        false,
		}
	}

	var wins, losses int
	var winSum, lossSum float64
	for _, t := range s.trades {
		pnl := t.PnL()
		if pnl > 0 {
			wins++
			winSum += pnl
		} else {
			losses++
			lossSum += -pnl
		}
	}

	winRate := float64(wins) / float64(count)
	avgWin := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	avgLoss := 1.0 // floor avoids a zero divisor on a loss-free window
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}

	odds := 1.0
	if avgLoss > 0 {
		odds = avgWin / avgLoss
	}

	full := 0.0
	if odds > 0 {
		full = (odds*winRate - (1 - winRate)) / odds
	}
	if full < 0 {
		full = 0 // negative Kelly means no edge: do not size up, do not short the formula
	}

	fractional := full * s.cfg.SafetyFraction
	if fractional > s.cfg.MaxPositionPct {
		fractional = s.cfg.MaxPositionPct
	}

	risk := capital * fractional
	return Result{
		FullKelly:       full,
		FractionalKelly: fractional,
		RiskAmount:      risk,
		Shares:          sharesFor(risk, entryPrice, stopPrice),
		WinRate:         winRate,
		AvgWin:          avgWin,
		AvgLoss:         avgLoss,
		OddsRatio:       odds,
		TradesAnalyzed:  count,
		IsActive:        true,
	}
}

// HasEdge reports whether the current window implies a positive full
// Kelly. Always false before the minimum history.
func (s *Sizer) HasEdge() bool {
	if len(s.trades) < s.cfg.MinTrades {
		return false
	}
	return s.Calculate(1, 0, 0).FullKelly > 0
}

// sharesFor converts a risk amount into shares via per-share risk. When
// no stop is supplied, 2% of entry stands in for per-share risk.
func sharesFor(risk, entry, stop float64) int64 {
	perShare := entry * 0.02
	if stop > 0 {
		perShare = entry - stop
		if perShare < 0 {
			perShare = -perShare
		}
	}
	if perShare <= 0 {
		return 0
	}
	shares := int64(risk / perShare)
	if shares < 0 {
		return 0
	}
	return shares
}
