// Package orderflow computes Order Flow Imbalance from order-book depth.
// OFI measures the skew between visible buy and sell pressure and tends to
// lead price by a few hundred milliseconds on liquid books.
package orderflow

import "alphatick/internal/types"

// Trend classifies the recent drift of the imbalance history.
type Trend string

const (
	TrendInsufficient Trend = "INSUFFICIENT_DATA"
	TrendBuyPressure  Trend = "INCREASING_BUY_PRESSURE"
	TrendSellPressure Trend = "INCREASING_SELL_PRESSURE"
	TrendStable       Trend = "STABLE"
)

// Result is one OFI observation.
type Result struct {
	OFI        float64 // -1.0 to +1.0
	Signal     types.TradeSignal
	BuyVolume  float64
	SellVolume float64
	Strength   float64 // abs(OFI), 0.0 to 1.0
}

// Analyzer derives a directional signal from book snapshots and keeps a
// bounded imbalance history for trend detection.
//
// OFI = (bid volume - ask volume) / (bid volume + ask volume), with
// readings above the accumulation threshold flagged BUY and below the
// distribution threshold flagged SELL.
type Analyzer struct {
	accThreshold  float64
	distThreshold float64
	history       []float64
	maxHistory    int
}

// Option tunes an Analyzer.
type Option func(*Analyzer)

// WithThresholds overrides the default +-0.3 signal thresholds.
func WithThresholds(accumulation, distribution float64) Option {
	return func(a *Analyzer) {
		a.accThreshold = accumulation
		a.distThreshold = distribution
	}
}

// WithHistorySize overrides the default 50-sample rolling history.
func WithHistorySize(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxHistory = n
		}
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		accThreshold:  0.3,
		distThreshold: -0.3,
		maxHistory:    50,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes OFI for one snapshot and records it in the history.
// An empty book yields a zero imbalance and HOLD.
func (a *Analyzer) Analyze(snapshot types.OrderBookSnapshot) Result {
	buyVol := float64(snapshot.BidVolume())
	sellVol := float64(snapshot.AskVolume())
	total := buyVol + sellVol

	var ofi float64
	if total > 0 {
		ofi = (buyVol - sellVol) / total
	}

	a.push(ofi)

	signal := types.SignalHold
	switch {
	case ofi > a.accThreshold:
		signal = types.SignalBuy
	case ofi < a.distThreshold:
		signal = types.SignalSell
	}

	return Result{
		OFI:        ofi,
		Signal:     signal,
		BuyVolume:  buyVol,
		SellVolume: sellVol,
		Strength:   abs(ofi),
	}
}

// AverageOFI is the rolling mean over the bounded history.
func (a *Analyzer) AverageOFI() float64 {
	if len(a.history) == 0 {
		return 0
	}
	var sum float64
	for _, v := range a.history {
		sum += v
	}
	return sum / float64(len(a.history))
}

// TrendDirection compares the last ten samples against the ten before
// them. Needs at least ten samples to say anything.
func (a *Analyzer) TrendDirection() Trend {
	n := len(a.history)
	if n < 10 {
		return TrendInsufficient
	}

	recent := a.history[n-10:]
	older := recent
	if n >= 20 {
		older = a.history[n-20 : n-10]
	}

	recentAvg := mean(recent)
	olderAvg := mean(older)

	switch {
	case recentAvg > olderAvg+0.05:
		return TrendBuyPressure
	case recentAvg < olderAvg-0.05:
		return TrendSellPressure
	default:
		return TrendStable
	}
}

func (a *Analyzer) push(v float64) {
	a.history = append(a.history, v)
	if len(a.history) > a.maxHistory {
		a.history = a.history[len(a.history)-a.maxHistory:]
	}
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
