package orderflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alphatick/internal/types"
)

func bookWith(bidQty, askQty int64) types.OrderBookSnapshot {
	return types.OrderBookSnapshot{
		Symbol: "AAPL",
		Bids:   []types.OrderBookLevel{{Price: 99.99, Quantity: bidQty}},
		Asks:   []types.OrderBookLevel{{Price: 100.01, Quantity: askQty}},
	}
}

func TestAnalyze(t *testing.T) {
	t.Run("heavy bid side signals BUY", func(t *testing.T) {
		a := NewAnalyzer()
		res := a.Analyze(bookWith(1000, 200))
		assert.InDelta(t, 0.667, res.OFI, 0.001)
		assert.Equal(t, types.SignalBuy, res.Signal)
		assert.InDelta(t, 0.667, res.Strength, 0.001)
		assert.Equal(t, 1000.0, res.BuyVolume)
		assert.Equal(t, 200.0, res.SellVolume)
	})

	t.Run("heavy ask side signals SELL", func(t *testing.T) {
		a := NewAnalyzer()
		res := a.Analyze(bookWith(200, 1000))
		assert.InDelta(t, -0.667, res.OFI, 0.001)
		assert.Equal(t, types.SignalSell, res.Signal)
	})

	t.Run("balanced book holds", func(t *testing.T) {
		a := NewAnalyzer()
		res := a.Analyze(bookWith(500, 500))
		assert.Equal(t, 0.0, res.OFI)
		assert.Equal(t, types.SignalHold, res.Signal)
		assert.Equal(t, 0.0, res.Strength)
	})

	t.Run("empty book holds at zero", func(t *testing.T) {
		a := NewAnalyzer()
		res := a.Analyze(types.OrderBookSnapshot{Symbol: "AAPL"})
		assert.Equal(t, 0.0, res.OFI)
		assert.Equal(t, types.SignalHold, res.Signal)
	})

	t.Run("imbalance at the threshold is not a signal", func(t *testing.T) {
		// 650 vs 350 gives exactly +0.3, which must not fire
		a := NewAnalyzer()
		res := a.Analyze(bookWith(650, 350))
		assert.InDelta(t, 0.3, res.OFI, 1e-9)
		assert.Equal(t, types.SignalHold, res.Signal)
	})

	t.Run("custom thresholds", func(t *testing.T) {
		a := NewAnalyzer(WithThresholds(0.1, -0.1))
		res := a.Analyze(bookWith(600, 400))
		assert.Equal(t, types.SignalBuy, res.Signal)
	})
}

func TestTrendDirection(t *testing.T) {
	t.Run("insufficient before ten samples", func(t *testing.T) {
		a := NewAnalyzer()
		for i := 0; i < 9; i++ {
			a.Analyze(bookWith(500, 500))
		}
		assert.Equal(t, TrendInsufficient, a.TrendDirection())
	})

	t.Run("stable on flat history", func(t *testing.T) {
		a := NewAnalyzer()
		for i := 0; i < 20; i++ {
			a.Analyze(bookWith(500, 500))
		}
		assert.Equal(t, TrendStable, a.TrendDirection())
	})

	t.Run("detects growing buy pressure", func(t *testing.T) {
		a := NewAnalyzer()
		for i := 0; i < 10; i++ {
			a.Analyze(bookWith(500, 500)) // older block: neutral
		}
		for i := 0; i < 10; i++ {
			a.Analyze(bookWith(800, 200)) // recent block: +0.6
		}
		assert.Equal(t, TrendBuyPressure, a.TrendDirection())
	})

	t.Run("detects growing sell pressure", func(t *testing.T) {
		a := NewAnalyzer()
		for i := 0; i < 10; i++ {
			a.Analyze(bookWith(500, 500))
		}
		for i := 0; i < 10; i++ {
			a.Analyze(bookWith(200, 800))
		}
		assert.Equal(t, TrendSellPressure, a.TrendDirection())
	})
}

func TestHistoryBounded(t *testing.T) {
	a := NewAnalyzer(WithHistorySize(5))
	for i := 0; i < 50; i++ {
		a.Analyze(bookWith(900, 100))
	}
	assert.InDelta(t, 0.8, a.AverageOFI(), 1e-9)
	assert.Len(t, a.history, 5)
}
