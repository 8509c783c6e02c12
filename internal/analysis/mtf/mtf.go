// Package mtf confirms signals across 1H, 4H and 1D timeframes. Each
// timeframe owns an independent indicator suite; a direction only counts
// when at least two of the three timeframes agree, which filters false
// breakouts on the execution timeframe.
package mtf

import (
	"alphatick/internal/indicator"
	"alphatick/internal/types"
)

// Timeframe identifies one of the three confirmation horizons.
type Timeframe string

const (
	OneHour  Timeframe = "1H"
	FourHour Timeframe = "4H"
	OneDay   Timeframe = "1D"
)

// Timeframes lists the horizons in ascending order.
var Timeframes = []Timeframe{OneHour, FourHour, OneDay}

// TimeframeSignal is the vote of a single timeframe.
type TimeframeSignal struct {
	Timeframe   Timeframe
	Direction   types.TradeSignal
	MACDBullish bool
	RSIBullish  bool
	EMABullish  bool
	Strength    float64 // 0.0 to 1.0
}

// Result is the combined agreement across all timeframes.
type Result struct {
	AgreementScore       float64 // 0.0 to 1.0
	Direction            types.TradeSignal
	Signals              []TimeframeSignal
	IsConfirmed          bool    // 2+ timeframes agree
	ConfirmationStrength float64 // fraction of timeframes in agreement
}

// Analyzer maintains the three per-timeframe suites. Feed each suite when
// its candle closes, then call Analyze for the combined vote.
type Analyzer struct {
	suites map[Timeframe]*indicator.Suite
}

func NewAnalyzer() *Analyzer {
	suites := make(map[Timeframe]*indicator.Suite, len(Timeframes))
	for _, tf := range Timeframes {
		suites[tf] = indicator.NewSuite()
	}
	return &Analyzer{suites: suites}
}

// Update advances the suite for one timeframe with a closed candle.
func (a *Analyzer) Update(tf Timeframe, tick types.Tick) {
	if suite, ok := a.suites[tf]; ok {
		suite.Update(tick)
	}
}

// Preheat warms one timeframe's suite from historical candles.
func (a *Analyzer) Preheat(tf Timeframe, candles []types.Tick) {
	if suite, ok := a.suites[tf]; ok {
		indicator.Preheat(suite, candles)
	}
}

// Analyze computes the multi-timeframe agreement. A timeframe without
// enough data votes HOLD at zero strength rather than being skipped, so
// the denominator stays fixed at three.
func (a *Analyzer) Analyze() Result {
	signals := make([]TimeframeSignal, 0, len(Timeframes))
	bullish, bearish := 0, 0

	for _, tf := range Timeframes {
		suite := a.suites[tf]
		if !suite.Ready() {
			signals = append(signals, TimeframeSignal{
				Timeframe: tf,
				Direction: types.SignalHold,
			})
			continue
		}

		vote := voteTimeframe(tf, suite)
		switch vote.Direction {
		case types.SignalBuy:
			bullish++
		case types.SignalSell:
			bearish++
		}
		signals = append(signals, vote)
	}

	total := len(Timeframes)
	direction := types.SignalHold
	confirmed := false
	switch {
	case bullish >= 2:
		direction = types.SignalBuy
		confirmed = true
	case bearish >= 2:
		direction = types.SignalSell
		confirmed = true
	}

	agreement := 0.5
	switch {
	case bullish > bearish:
		agreement = float64(bullish) / float64(total)
	case bearish > bullish:
		agreement = 1 - float64(bearish)/float64(total)
	}

	maxCount := bullish
	if bearish > maxCount {
		maxCount = bearish
	}

	return Result{
		AgreementScore:       agreement,
		Direction:            direction,
		Signals:              signals,
		IsConfirmed:          confirmed,
		ConfirmationStrength: float64(maxCount) / float64(total),
	}
}

// voteTimeframe derives a direction from three sub-votes: the MACD cross,
// the RSI zone, and the EMA stack. Direction needs at least two of three.
func voteTimeframe(tf Timeframe, suite *indicator.Suite) TimeframeSignal {
	ema9 := suite.EMA9Value()
	ema21 := suite.EMA21Value()
	ema55 := suite.EMA55Value()
	rsi := suite.RSIValue()

	macdBullish := ema9 > ema21 && suite.MACDFastAboveSlow()
	rsiHealthy := rsi > 30 && rsi < 70
	rsiBounce := rsi < 40
	emaBullish := ema9 > ema21 && ema21 > ema55

	bullVotes := countTrue(macdBullish, rsiHealthy || rsiBounce, emaBullish)
	bearVotes := countTrue(!macdBullish, rsi > 60, !emaBullish)

	sig := TimeframeSignal{
		Timeframe:   tf,
		MACDBullish: macdBullish,
		RSIBullish:  rsiHealthy || rsiBounce,
		EMABullish:  emaBullish,
	}
	switch {
	case bullVotes >= 2:
		sig.Direction = types.SignalBuy
		sig.Strength = float64(bullVotes) / 3
	case bearVotes >= 2:
		sig.Direction = types.SignalSell
		sig.Strength = float64(bearVotes) / 3
	default:
		sig.Direction = types.SignalHold
		sig.Strength = 0.3
	}
	return sig
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// Reset fully clears every timeframe's indicators.
func (a *Analyzer) Reset() {
	for _, suite := range a.suites {
		suite.ResetAll()
	}
}
