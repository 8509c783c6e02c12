// Package signal combines the indicator suite and the four analysis
// increments into one directional decision, then gates that decision
// through the trade-confirmation check.
package signal

import (
	"fmt"

	"alphatick/internal/analysis/kelly"
	"alphatick/internal/analysis/mtf"
	"alphatick/internal/analysis/orderflow"
	"alphatick/internal/analysis/regime"
	"alphatick/internal/types"
)

// Component weights. Technical carries the largest share; Kelly only
// nudges because sizing is handled again at confirmation time.
const (
	weightTechnical = 0.40
	weightOFI       = 0.20
	weightMTF       = 0.15
	weightKelly     = 0.10

	// kellyInfluenceCap bounds how much a hot streak can push direction.
	kellyInfluenceCap = 0.25

	// buy/sell decision band around zero.
	signalThreshold = 0.15
)

// Output is the combined signal with its component sub-scores preserved
// for confirmation and reasoning.
type Output struct {
	Signal         types.TradeSignal
	Strength       float64 // 0.0 to 1.0
	Confidence     float64 // 0.0 to 1.0
	TechnicalScore float64
	OFIScore       float64
	Regime         types.VolatilityRegime
	RegimeMult     float64
	MTFAgreement   float64
	KellyFraction  float64
	KellyActive    bool
	Reasoning      string
}

// Generator is stateless: all state lives in the increments it consumes.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// Generate blends the technical score, OFI, multi-timeframe agreement and
// Kelly fraction into one directional score, scales it by the regime's
// size multiplier, and maps it to BUY/SELL/HOLD around the +-0.15 band.
func (g *Generator) Generate(
	ind types.IndicatorSnapshot,
	ofi orderflow.Result,
	reg regime.Result,
	mtfRes mtf.Result,
	kellyRes kelly.Result,
) Output {
	techScore := technicalScore(ind)

	ofiDirection := 0.0
	switch {
	case ofi.OFI > 0:
		ofiDirection = 1
	case ofi.OFI < 0:
		ofiDirection = -1
	}

	mtfDirection := 0.0
	switch mtfRes.Direction {
	case types.SignalBuy:
		mtfDirection = 1
	case types.SignalSell:
		mtfDirection = -1
	}

	kellyFraction := kellyRes.FractionalKelly
	kellyTerm := kellyFraction
	if kellyTerm > kellyInfluenceCap {
		kellyTerm = kellyInfluenceCap
	}

	combined := weightTechnical*techScore +
		weightOFI*ofi.Strength*ofiDirection +
		weightMTF*mtfRes.AgreementScore*mtfDirection +
		weightKelly*kellyTerm
	combined *= reg.PositionSizeMult

	sig := types.SignalHold
	switch {
	case combined > signalThreshold:
		sig = types.SignalBuy
	case combined < -signalThreshold:
		sig = types.SignalSell
	}

	strength := combined
	if strength < 0 {
		strength = -strength
	}
	confidence := strength * 1.5
	if confidence > 1 {
		confidence = 1
	}
	// Conflicting timeframes make any directional call less trustworthy.
	if mtfRes.AgreementScore < 0.3 && sig != types.SignalHold {
		confidence *= 0.7
	}

	reasoning := fmt.Sprintf(
		"tech=%+.2f ofi=%+.2f mtf=%.0f%% regime=%s kelly=%.2f -> %s (str=%.2f conf=%.2f)",
		techScore, ofi.Strength*ofiDirection, mtfRes.AgreementScore*100,
		reg.Regime, kellyFraction, sig, strength, confidence,
	)

	return Output{
		Signal:         sig,
		Strength:       strength,
		Confidence:     confidence,
		TechnicalScore: techScore,
		OFIScore:       ofi.Strength,
		Regime:         reg.Regime,
		RegimeMult:     reg.PositionSizeMult,
		MTFAgreement:   mtfRes.AgreementScore,
		KellyFraction:  kellyFraction,
		KellyActive:    kellyRes.IsActive,
		Reasoning:      reasoning,
	}
}

// technicalScore blends RSI zone, MACD histogram, EMA-9/21 cross and
// close-vs-VWAP into a [-1, 1] score, averaged over whichever
// sub-indicators have data.
func technicalScore(ind types.IndicatorSnapshot) float64 {
	score := 0.0
	n := 0

	// RSI: extremes vote hard, the middle votes proportionally to the
	// distance from neutral.
	switch {
	case ind.RSI < 30:
		score += 1
	case ind.RSI > 70:
		score -= 1
	default:
		score += (50 - ind.RSI) / 50
	}
	n++

	// MACD histogram, normalized around a 5-point swing.
	score += clamp(ind.MACDHist/5, -1, 1)
	n++

	// EMA-9/21 crossover as a percentage gap.
	if ind.EMA9 != 0 && ind.EMA21 != 0 {
		cross := (ind.EMA9 - ind.EMA21) / ind.EMA21 * 100
		score += clamp(cross, -1, 1)
		n++
	}

	// Close vs session VWAP.
	if ind.Close != 0 && ind.VWAP != 0 {
		diff := (ind.Close - ind.VWAP) / ind.VWAP * 100
		score += clamp(diff, -1, 1)
		n++
	}

	if n == 0 {
		return 0
	}
	return score / float64(n)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
