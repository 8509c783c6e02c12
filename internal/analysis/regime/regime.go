// Package regime classifies ATR-normalized volatility into five bands and
// maps each band to position-sizing and stop-distance adjustments.
package regime

import "alphatick/internal/types"

// Result is one regime observation with its trading adjustments.
type Result struct {
	Regime              types.VolatilityRegime
	VolatilityPct       float64 // ATR/close as a percentage
	PositionSizeMult    float64
	StopLossMult        float64
	RecommendedStrategy string
}

type regimeParams struct {
	sizeMult float64
	stopMult float64
	strategy string
}

// Fixed per-regime adjustments. Low volatility earns larger size and
// tighter stops; extreme volatility cuts size hard and widens stops.
var regimeTable = map[types.VolatilityRegime]regimeParams{
	types.RegimeExtremeLowVol: {1.5, 0.8, "Momentum / Breakout"},
	types.RegimeLowVol:        {1.3, 1.0, "Trend Following"},
	types.RegimeNormal:        {1.0, 1.0, "Balanced"},
	types.RegimeHighVol:       {0.7, 1.25, "Mean Reversion / Defensive"},
	types.RegimeExtremeVol:    {0.3, 2.0, "Standby / Reduce Exposure"},
}

// Thresholds are the ascending volatility-percentage boundaries between
// regimes. A reading below ExtremeLow is EXTREME_LOW_VOL; above High is
// EXTREME_VOL.
type Thresholds struct {
	ExtremeLow float64
	Low        float64
	Normal     float64
	High       float64
}

// DefaultThresholds matches the 1/3/6/10 percent boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{ExtremeLow: 1, Low: 3, Normal: 6, High: 10}
}

// Detector keeps a bounded regime history for stability and transition
// queries on top of the stateless classification.
type Detector struct {
	thresholds Thresholds
	history    []types.VolatilityRegime
	volHistory []float64
	maxHistory int
}

func NewDetector(thresholds Thresholds) *Detector {
	return &Detector{thresholds: thresholds, maxHistory: 100}
}

// Detect classifies the current volatility and records the observation.
// A non-positive close is classified NORMAL at zero volatility rather than
// propagating a division error.
func (d *Detector) Detect(atr, closePrice float64) Result {
	regime := types.RegimeNormal
	volPct := 0.0
	if closePrice > 0 {
		volPct = atr / closePrice * 100
		regime = d.classify(volPct)
	}

	d.history = append(d.history, regime)
	d.volHistory = append(d.volHistory, volPct)
	if len(d.history) > d.maxHistory {
		d.history = d.history[len(d.history)-d.maxHistory:]
		d.volHistory = d.volHistory[len(d.volHistory)-d.maxHistory:]
	}

	params := regimeTable[regime]
	return Result{
		Regime:              regime,
		VolatilityPct:       volPct,
		PositionSizeMult:    params.sizeMult,
		StopLossMult:        params.stopMult,
		RecommendedStrategy: params.strategy,
	}
}

func (d *Detector) classify(volPct float64) types.VolatilityRegime {
	t := d.thresholds
	switch {
	case volPct < t.ExtremeLow:
		return types.RegimeExtremeLowVol
	case volPct < t.Low:
		return types.RegimeLowVol
	case volPct < t.Normal:
		return types.RegimeNormal
	case volPct < t.High:
		return types.RegimeHighVol
	default:
		return types.RegimeExtremeVol
	}
}

// Current is the most recently detected regime, NORMAL before any
// observation.
func (d *Detector) Current() types.VolatilityRegime {
	if len(d.history) == 0 {
		return types.RegimeNormal
	}
	return d.history[len(d.history)-1]
}

// Stability is the fraction of the last 20 observations matching the
// current regime. Returns 0.5 while fewer than 5 samples exist.
func (d *Detector) Stability() float64 {
	if len(d.history) < 5 {
		return 0.5
	}
	current := d.history[len(d.history)-1]
	recent := d.history
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	matches := 0
	for _, r := range recent {
		if r == current {
			matches++
		}
	}
	return float64(matches) / float64(len(recent))
}

// IsTransitioning reports whether the regime changed within the last 5
// observations.
func (d *Detector) IsTransitioning() bool {
	if len(d.history) < 5 {
		return false
	}
	recent := d.history[len(d.history)-5:]
	for _, r := range recent[1:] {
		if r != recent[0] {
			return true
		}
	}
	return false
}
