// Package indicator maintains streaming technical indicators with O(1)
// per-tick updates. Each indicator keeps just enough internal state to
// advance on a new price without recomputing over history.
package indicator

import "math"

const epsilon = 1e-9

// SMA is a simple moving average over a fixed window, implemented as a
// ring buffer with a running sum.
type SMA struct {
	period int
	buf    []float64
	head   int
	count  int
	sum    float64
}

func NewSMA(period int) *SMA {
	return &SMA{period: period, buf: make([]float64, period)}
}

func (s *SMA) Update(price float64) float64 {
	if s.count == s.period {
		s.sum -= s.buf[s.head]
	} else {
		s.count++
	}
	s.buf[s.head] = price
	s.head = (s.head + 1) % s.period
	s.sum += price
	return s.sum / float64(s.count)
}

func (s *SMA) Ready() bool { return s.count == s.period }

func (s *SMA) Value() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

func (s *SMA) Reset() {
	s.head = 0
	s.count = 0
	s.sum = 0
}

// EMA is an exponential moving average seeded with the first price.
type EMA struct {
	period int
	alpha  float64
	value  float64
	seeded bool
}

func NewEMA(period int) *EMA {
	return &EMA{period: period, alpha: 2.0 / float64(period+1)}
}

func (e *EMA) Update(price float64) float64 {
	if !e.seeded {
		e.value = price
		e.seeded = true
	} else {
		e.value = e.alpha*price + (1-e.alpha)*e.value
	}
	return e.value
}

func (e *EMA) Ready() bool    { return e.seeded }
func (e *EMA) Value() float64 { return e.value }

func (e *EMA) Reset() {
	e.value = 0
	e.seeded = false
}

// RSI uses exponential averaging of gains and losses (alpha = 1/period).
// Returns the neutral 50 until the first price delta is observed.
type RSI struct {
	period    int
	alpha     float64
	avgGain   float64
	avgLoss   float64
	prevClose float64
	havePrev  bool
	haveAvg   bool
	count     int
}

func NewRSI(period int) *RSI {
	return &RSI{period: period, alpha: 1.0 / float64(period)}
}

func (r *RSI) Update(close float64) float64 {
	if !r.havePrev {
		r.prevClose = close
		r.havePrev = true
		return 50
	}

	delta := close - r.prevClose
	gain := math.Max(delta, 0)
	loss := math.Max(-delta, 0)

	if !r.haveAvg {
		r.avgGain = gain
		r.avgLoss = loss
		r.haveAvg = true
	} else {
		r.avgGain = r.alpha*gain + (1-r.alpha)*r.avgGain
		r.avgLoss = r.alpha*loss + (1-r.alpha)*r.avgLoss
	}

	r.prevClose = close
	r.count++
	return r.Value()
}

func (r *RSI) Ready() bool { return r.count >= r.period }

func (r *RSI) Value() float64 {
	if !r.haveAvg {
		return 50
	}
	rs := r.avgGain / (r.avgLoss + epsilon)
	return 100 - 100/(1+rs)
}

func (r *RSI) Reset() {
	r.avgGain = 0
	r.avgLoss = 0
	r.prevClose = 0
	r.havePrev = false
	r.haveAvg = false
	r.count = 0
}

// MACD decomposes into three streaming EMAs: fast, slow and the signal
// line over the MACD line itself.
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
}

func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	return &MACD{
		fast:   NewEMA(fastPeriod),
		slow:   NewEMA(slowPeriod),
		signal: NewEMA(signalPeriod),
	}
}

// Update returns (macd line, signal line, histogram).
func (m *MACD) Update(close float64) (float64, float64, float64) {
	fast := m.fast.Update(close)
	slow := m.slow.Update(close)
	line := fast - slow
	sig := m.signal.Update(line)
	return line, sig, line - sig
}

func (m *MACD) Ready() bool { return m.slow.Ready() }

// FastAboveSlow reports whether the fast EMA leads the slow EMA, used by
// the multi-timeframe cross check.
func (m *MACD) FastAboveSlow() bool { return m.fast.Value() > m.slow.Value() }

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
}

// ATR smooths the true range with an EMA (alpha = 2/(period+1)).
type ATR struct {
	period    int
	alpha     float64
	atr       float64
	prevClose float64
	havePrev  bool
	haveATR   bool
	count     int
}

func NewATR(period int) *ATR {
	return &ATR{period: period, alpha: 2.0 / float64(period+1)}
}

func (a *ATR) Update(high, low, close float64) float64 {
	prev := close
	if a.havePrev {
		prev = a.prevClose
	}

	tr := math.Max(high-low, math.Max(math.Abs(high-prev), math.Abs(low-prev)))

	if !a.haveATR {
		a.atr = tr
		a.haveATR = true
	} else {
		a.atr = a.alpha*tr + (1-a.alpha)*a.atr
	}

	a.prevClose = close
	a.havePrev = true
	a.count++
	return a.atr
}

func (a *ATR) Ready() bool    { return a.count >= a.period }
func (a *ATR) Value() float64 { return a.atr }

func (a *ATR) Reset() {
	a.atr = 0
	a.prevClose = 0
	a.havePrev = false
	a.haveATR = false
	a.count = 0
}

// OBV is on-balance volume: cumulative volume signed by price direction.
type OBV struct {
	obv       float64
	prevClose float64
	havePrev  bool
}

func NewOBV() *OBV { return &OBV{} }

func (o *OBV) Update(close, volume float64) float64 {
	if !o.havePrev {
		o.prevClose = close
		o.havePrev = true
		return 0
	}
	switch {
	case close > o.prevClose:
		o.obv += volume
	case close < o.prevClose:
		o.obv -= volume
	}
	o.prevClose = close
	return o.obv
}

func (o *OBV) Value() float64 { return o.obv }

func (o *OBV) Reset() {
	o.obv = 0
	o.prevClose = 0
	o.havePrev = false
}

// VWAP is the session volume-weighted average price. Reset at market open;
// this is the only session-scoped indicator in the suite.
type VWAP struct {
	cumTPVol float64
	cumVol   float64
}

func NewVWAP() *VWAP { return &VWAP{} }

func (v *VWAP) Update(high, low, close, volume float64) float64 {
	typical := (high + low + close) / 3
	v.cumTPVol += typical * volume
	v.cumVol += volume
	return v.cumTPVol / (v.cumVol + epsilon)
}

func (v *VWAP) Value() float64 {
	if v.cumVol <= 0 {
		return 0
	}
	return v.cumTPVol / (v.cumVol + epsilon)
}

// Reset clears session state. Call at market open.
func (v *VWAP) Reset() {
	v.cumTPVol = 0
	v.cumVol = 0
}

// Keltner is a Keltner Channel: EMA midline with ATR bands.
type Keltner struct {
	ema  *EMA
	atr  *ATR
	mult float64
}

func NewKeltner(emaPeriod, atrPeriod int, atrMult float64) *Keltner {
	return &Keltner{ema: NewEMA(emaPeriod), atr: NewATR(atrPeriod), mult: atrMult}
}

// Update returns (upper, middle, lower).
func (k *Keltner) Update(high, low, close float64) (float64, float64, float64) {
	mid := k.ema.Update(close)
	band := k.mult * k.atr.Update(high, low, close)
	return mid + band, mid, mid - band
}

func (k *Keltner) Ready() bool { return k.ema.Ready() && k.atr.Ready() }

func (k *Keltner) Reset() {
	k.ema.Reset()
	k.atr.Reset()
}
