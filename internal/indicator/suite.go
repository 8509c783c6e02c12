package indicator

import "alphatick/internal/types"

// readyTicks is the warm-up horizon: the slowest indicator in the suite is
// the 55-period EMA.
const readyTicks = 55

// Suite aggregates every streaming indicator behind a single Update call.
// Update is the only mutating operation and is O(1) per indicator.
type Suite struct {
	sma20 *SMA
	sma50 *SMA
	ema9  *EMA
	ema21 *EMA
	ema55 *EMA

	rsi  *RSI
	macd *MACD

	atr     *ATR
	keltner *Keltner

	obv  *OBV
	vwap *VWAP

	tickCount int
}

func NewSuite() *Suite {
	return &Suite{
		sma20:   NewSMA(20),
		sma50:   NewSMA(50),
		ema9:    NewEMA(9),
		ema21:   NewEMA(21),
		ema55:   NewEMA(55),
		rsi:     NewRSI(14),
		macd:    NewMACD(12, 26, 9),
		atr:     NewATR(14),
		keltner: NewKeltner(20, 14, 2.0),
		obv:     NewOBV(),
		vwap:    NewVWAP(),
	}
}

// Update advances every indicator with the tick and returns a snapshot of
// the resulting values plus derived binary flags. The snapshot is a fresh
// value on each call and is never mutated afterwards.
func (s *Suite) Update(tick types.Tick) types.IndicatorSnapshot {
	s.tickCount++

	sma20 := s.sma20.Update(tick.Close)
	sma50 := s.sma50.Update(tick.Close)
	ema9 := s.ema9.Update(tick.Close)
	ema21 := s.ema21.Update(tick.Close)
	ema55 := s.ema55.Update(tick.Close)

	rsi := s.rsi.Update(tick.Close)
	macdLine, macdSignal, macdHist := s.macd.Update(tick.Close)

	atr := s.atr.Update(tick.High, tick.Low, tick.Close)
	kUpper, kMid, kLower := s.keltner.Update(tick.High, tick.Low, tick.Close)

	obv := s.obv.Update(tick.Close, tick.Volume)
	vwap := s.vwap.Update(tick.High, tick.Low, tick.Close, tick.Volume)

	return types.IndicatorSnapshot{
		SMA20:      sma20,
		SMA50:      sma50,
		EMA9:       ema9,
		EMA21:      ema21,
		EMA55:      ema55,
		RSI:        rsi,
		MACDLine:   macdLine,
		MACDSignal: macdSignal,
		MACDHist:   macdHist,

		ATR:          atr,
		KeltnerUpper: kUpper,
		KeltnerMid:   kMid,
		KeltnerLower: kLower,

		OBV:  obv,
		VWAP: vwap,

		Close: tick.Close,

		PriceAboveSMA20: tick.Close > sma20,
		EMA9Above21:     ema9 > ema21,
		MACDPositive:    macdLine > 0,
		RSIOversold:     rsi < 30,
		RSIOverbought:   rsi > 70,
		PriceAboveVWAP:  tick.Close > vwap,
	}
}

// Ready reports whether enough ticks have passed for the slowest indicator.
func (s *Suite) Ready() bool { return s.tickCount >= readyTicks }

// TickCount returns the number of updates since the last full reset.
func (s *Suite) TickCount() int { return s.tickCount }

// EMA9Value, EMA21Value and EMA55Value expose the trend stack for the
// multi-timeframe voter without forcing a snapshot round trip.
func (s *Suite) EMA9Value() float64  { return s.ema9.Value() }
func (s *Suite) EMA21Value() float64 { return s.ema21.Value() }
func (s *Suite) EMA55Value() float64 { return s.ema55.Value() }

// RSIValue returns the current RSI reading.
func (s *Suite) RSIValue() float64 { return s.rsi.Value() }

// MACDFastAboveSlow reports the MACD EMA cross state.
func (s *Suite) MACDFastAboveSlow() bool { return s.macd.FastAboveSlow() }

// ResetSession clears session-scoped state only (VWAP). Call at market
// open. Distinct from ResetAll on purpose: trend and momentum state
// carries across sessions.
func (s *Suite) ResetSession() {
	s.vwap.Reset()
}

// ResetAll fully clears every indicator and the tick counter.
func (s *Suite) ResetAll() {
	s.sma20.Reset()
	s.sma50.Reset()
	s.ema9.Reset()
	s.ema21.Reset()
	s.ema55.Reset()
	s.rsi.Reset()
	s.macd.Reset()
	s.atr.Reset()
	s.keltner.Reset()
	s.obv.Reset()
	s.vwap.Reset()
	s.tickCount = 0
}
