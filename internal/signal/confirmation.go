package signal

import (
	"fmt"
	"sync"

	"alphatick/internal/types"
)

// ConfirmationConfig holds the gate thresholds.
type ConfirmationConfig struct {
	MinConfidence  float64 // below this the trade is rejected
	MinStrength    float64
	MaxPositionPct float64 // portfolio cap per position, e.g. 0.25
	MaxPositions   int
}

// DefaultConfirmationConfig mirrors the shipped config file.
func DefaultConfirmationConfig() ConfirmationConfig {
	return ConfirmationConfig{
		MinConfidence:  0.65,
		MinStrength:    0.15,
		MaxPositionPct: 0.25,
		MaxPositions:   3,
	}
}

// Confirmation is the result of running a signal through the gates.
// Rejected trades carry a zero size and the reasons that blocked them.
type Confirmation struct {
	Approved        bool
	Signal          types.TradeSignal
	PositionSizePct float64 // fraction of capital, 0 when rejected
	Reasons         []string
}

// Confirmer applies the entry gates in a fixed order and sizes the
// approved trades. Thresholds can be swapped at runtime via SetConfig.
type Confirmer struct {
	mu  sync.RWMutex
	cfg ConfirmationConfig
}

func NewConfirmer(cfg ConfirmationConfig) *Confirmer {
	c := &Confirmer{}
	c.SetConfig(cfg)
	return c
}

// SetConfig replaces the gate thresholds. Safe to call while the loop
// is confirming; the config hot-reload path uses this.
func (c *Confirmer) SetConfig(cfg ConfirmationConfig) {
	if cfg.MaxPositionPct <= 0 {
		cfg.MaxPositionPct = 0.25
	}
	if cfg.MaxPositions <= 0 {
		cfg.MaxPositions = 3
	}
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
}

// Confirm checks the gates in order and stops at the first failure:
// actionable signal, confidence floor, strength floor, daily risk
// allowance, then the open-position cap. Every failed gate is recorded.
func (c *Confirmer) Confirm(out Output, riskAllowed bool, openPositions int) Confirmation {
	c.mu.RLock()
	cfg := c.cfg
	c.mu.RUnlock()

	conf := Confirmation{Signal: out.Signal}

	if out.Signal == types.SignalHold {
		conf.Reasons = append(conf.Reasons, "signal is HOLD")
		return conf
	}
	if out.Confidence < cfg.MinConfidence {
		conf.Reasons = append(conf.Reasons,
			fmt.Sprintf("confidence %.2f below minimum %.2f", out.Confidence, cfg.MinConfidence))
		return conf
	}
	if out.Strength < cfg.MinStrength {
		conf.Reasons = append(conf.Reasons,
			fmt.Sprintf("strength %.2f below minimum %.2f", out.Strength, cfg.MinStrength))
		return conf
	}
	if !riskAllowed {
		conf.Reasons = append(conf.Reasons, "daily risk limit reached")
		return conf
	}
	if openPositions >= cfg.MaxPositions {
		conf.Reasons = append(conf.Reasons,
			fmt.Sprintf("open positions %d at cap %d", openPositions, cfg.MaxPositions))
		return conf
	}

	conf.Approved = true
	conf.PositionSizePct = size(cfg, out)
	conf.Reasons = append(conf.Reasons,
		fmt.Sprintf("approved %s at %.1f%% of capital", out.Signal, conf.PositionSizePct*100))
	return conf
}

// size scales the portfolio cap by confidence and the regime, then
// respects the Kelly fraction once it has enough trade history.
func size(cfg ConfirmationConfig, out Output) float64 {
	pct := cfg.MaxPositionPct * out.Confidence * regimeSizeScale(out.Regime)
	if out.KellyActive && out.KellyFraction > 0 && out.KellyFraction < pct {
		pct = out.KellyFraction
	}
	if pct > cfg.MaxPositionPct {
		pct = cfg.MaxPositionPct
	}
	return pct
}

func regimeSizeScale(r types.VolatilityRegime) float64 {
	switch r {
	case types.RegimeExtremeLowVol:
		return 0.5
	case types.RegimeLowVol:
		return 0.8
	case types.RegimeNormal:
		return 1.0
	case types.RegimeHighVol:
		return 0.6
	case types.RegimeExtremeVol:
		return 0.3
	default:
		return 1.0
	}
}
