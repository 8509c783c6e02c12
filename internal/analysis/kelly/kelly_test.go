package kelly

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alphatick/internal/types"
)

func trade(side types.TradeSide, entry, exit float64, qty int64) types.TradeResult {
	return types.TradeResult{
		Symbol:     "AAPL",
		Side:       side,
		Quantity:   qty,
		EntryPrice: entry,
		ExitPrice:  exit,
	}
}

func winner() types.TradeResult { return trade(types.SideLong, 100, 102, 10) } // +20
func loser() types.TradeResult  { return trade(types.SideLong, 100, 99, 10) }  // -10

func TestCalculateColdStart(t *testing.T) {
	s := NewSizer(Config{})
	res := s.Calculate(100_000, 100, 98)

	assert.False(t, res.IsActive)
	assert.Equal(t, 0.01, res.FractionalKelly)
	assert.Equal(t, 1000.0, res.RiskAmount)
	assert.Equal(t, int64(500), res.Shares) // 1000 risk / 2 per-share
	assert.Equal(t, 0, res.TradesAnalyzed)
	assert.Equal(t, 0.0, res.FullKelly)
}

func TestCalculateActive(t *testing.T) {
	s := NewSizer(Config{})
	// 12 winners of +20, 8 losers of -10: p=0.6, b=2
	for i := 0; i < 12; i++ {
		s.AddTrade(winner())
	}
	for i := 0; i < 8; i++ {
		s.AddTrade(loser())
	}

	res := s.Calculate(100_000, 100, 98)
	assert.True(t, res.IsActive)
	assert.Equal(t, 20, res.TradesAnalyzed)
	assert.InDelta(t, 0.6, res.WinRate, 1e-9)
	assert.InDelta(t, 2.0, res.OddsRatio, 1e-9)
	// f* = (2*0.6 - 0.4) / 2 = 0.4, quarter Kelly = 0.10 at the cap
	assert.InDelta(t, 0.4, res.FullKelly, 1e-9)
	assert.InDelta(t, 0.10, res.FractionalKelly, 1e-9)
	assert.InDelta(t, 10_000, res.RiskAmount, 1e-6)
	assert.Equal(t, int64(5000), res.Shares)
	assert.True(t, s.HasEdge())
}

func TestCalculateNoEdge(t *testing.T) {
	s := NewSizer(Config{})
	// 6 winners, 14 losers of equal magnitude: negative Kelly floors at 0
	for i := 0; i < 6; i++ {
		s.AddTrade(trade(types.SideLong, 100, 101, 10))
	}
	for i := 0; i < 14; i++ {
		s.AddTrade(trade(types.SideLong, 100, 99, 10))
	}

	res := s.Calculate(100_000, 100, 98)
	assert.True(t, res.IsActive)
	assert.Equal(t, 0.0, res.FullKelly)
	assert.Equal(t, 0.0, res.FractionalKelly)
	assert.Equal(t, 0.0, res.RiskAmount)
	assert.False(t, s.HasEdge())
}

func TestFractionalCapBelowLimit(t *testing.T) {
	s := NewSizer(Config{SafetyFraction: 0.25, MaxPositionPct: 0.50})
	for i := 0; i < 12; i++ {
		s.AddTrade(winner())
	}
	for i := 0; i < 8; i++ {
		s.AddTrade(loser())
	}

	res := s.Calculate(100_000, 100, 98)
	// uncapped: 0.4 * 0.25 = 0.10
	assert.InDelta(t, 0.10, res.FractionalKelly, 1e-9)
}

func TestLookbackTrimsOldTrades(t *testing.T) {
	s := NewSizer(Config{Lookback: 30})
	// 30 losers pushed out by 30 winners
	for i := 0; i < 30; i++ {
		s.AddTrade(loser())
	}
	for i := 0; i < 30; i++ {
		s.AddTrade(winner())
	}

	assert.Equal(t, 30, s.TradeCount())
	res := s.Calculate(100_000, 100, 98)
	assert.Equal(t, 1.0, res.WinRate)
}

func TestSharesWithoutStop(t *testing.T) {
	s := NewSizer(Config{})
	res := s.Calculate(100_000, 100, 0)
	// per-share risk defaults to 2% of entry
	assert.Equal(t, int64(500), res.Shares)
}

func TestShortSidePnL(t *testing.T) {
	s := NewSizer(Config{MinTrades: 2})
	// profitable shorts count as wins
	s.AddTrade(trade(types.SideShort, 100, 95, 10)) // +50
	s.AddTrade(trade(types.SideShort, 100, 95, 10))

	res := s.Calculate(100_000, 100, 98)
	assert.Equal(t, 1.0, res.WinRate)
	assert.Equal(t, 50.0, res.AvgWin)
}
