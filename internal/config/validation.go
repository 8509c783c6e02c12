package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.Trading.validate(); err != nil {
		return err
	}
	if err := c.Signal.validate(); err != nil {
		return err
	}
	if err := c.Risk.validate(); err != nil {
		return err
	}
	if err := c.Kelly.validate(); err != nil {
		return err
	}
	if err := c.Regime.validate(); err != nil {
		return err
	}
	if err := c.Broker.validate(); err != nil {
		return err
	}
	return nil
}

func (t *TradingConfig) validate() error {
	if len(t.NormalizedSymbols()) == 0 {
		return fmt.Errorf("trading.symbols requires at least one symbol")
	}
	if t.Capital <= 0 {
		return fmt.Errorf("trading.capital must be > 0")
	}
	if t.MaxPositionPct <= 0 || t.MaxPositionPct > 1 {
		return fmt.Errorf("trading.max_position_pct must be in (0, 1]")
	}
	if t.MaxPositions <= 0 {
		return fmt.Errorf("trading.max_positions must be > 0")
	}
	return nil
}

func (s *SignalConfig) validate() error {
	if s.MinConfidence <= 0 || s.MinConfidence > 1 {
		return fmt.Errorf("signal.min_confidence must be in (0, 1]")
	}
	if s.MinStrength <= 0 || s.MinStrength > 1 {
		return fmt.Errorf("signal.min_strength must be in (0, 1]")
	}
	if s.ExitConfidence <= 0 || s.ExitConfidence > 1 {
		return fmt.Errorf("signal.exit_confidence must be in (0, 1]")
	}
	return nil
}

func (r *RiskConfig) validate() error {
	if r.ATRStopMult <= 0 {
		return fmt.Errorf("risk.atr_stop_mult must be > 0")
	}
	if r.MaxDailyLossPct <= 0 || r.MaxDailyLossPct > 100 {
		return fmt.Errorf("risk.max_daily_loss_pct must be in (0, 100]")
	}
	return nil
}

func (k *KellyConfig) validate() error {
	if k.SafetyFraction <= 0 || k.SafetyFraction > 1 {
		return fmt.Errorf("kelly.safety_fraction must be in (0, 1]")
	}
	if k.MaxPositionPct <= 0 || k.MaxPositionPct > 1 {
		return fmt.Errorf("kelly.max_position_pct must be in (0, 1]")
	}
	if k.MinTrades <= 0 {
		return fmt.Errorf("kelly.min_trades must be > 0")
	}
	return nil
}

func (r *RegimeConfig) validate() error {
	if !(r.VeryLowMax < r.LowMax && r.LowMax < r.NormalMax && r.NormalMax < r.HighMax) {
		return fmt.Errorf("regime thresholds must be strictly increasing")
	}
	return nil
}

func (b *BrokerConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(b.Mode)) {
	case "paper":
		return nil
	default:
		return fmt.Errorf("broker.mode %q is not supported", b.Mode)
	}
}
