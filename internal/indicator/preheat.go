package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"alphatick/internal/types"
)

// Preheat replays historical candles through the suite so it is warm
// before the first live tick. Session state (VWAP) is reset afterwards:
// history belongs to prior sessions.
func Preheat(s *Suite, candles []types.Tick) {
	for _, c := range candles {
		s.Update(c)
	}
	s.ResetSession()
}

// BatchValues holds reference indicator values computed over a candle
// series in one batch pass. Used to sanity-check a preheated streaming
// suite against the conventional full-history computation.
type BatchValues struct {
	SMA20 float64
	SMA50 float64
	EMA9  float64
	EMA21 float64
	EMA55 float64
	RSI   float64
	ATR   float64
}

// Batch computes the reference values with talib. Requires at least 56
// candles so every indicator in the suite has a defined batch value.
func Batch(candles []types.Tick) (BatchValues, error) {
	if len(candles) < readyTicks+1 {
		return BatchValues{}, fmt.Errorf("need at least %d candles, got %d", readyTicks+1, len(candles))
	}

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	return BatchValues{
		SMA20: lastValid(talib.Sma(closes, 20)),
		SMA50: lastValid(talib.Sma(closes, 50)),
		EMA9:  lastValid(talib.Ema(closes, 9)),
		EMA21: lastValid(talib.Ema(closes, 21)),
		EMA55: lastValid(talib.Ema(closes, 55)),
		RSI:   lastValid(talib.Rsi(closes, 14)),
		ATR:   lastValid(talib.Atr(highs, lows, closes, 14)),
	}, nil
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		v := series[i]
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v != 0 {
			return v
		}
	}
	return 0
}
