package config

import "strings"

// Config is the engine's main configuration carrier.
type Config struct {
	App       AppConfig       `toml:"app"`
	Trading   TradingConfig   `toml:"trading"`
	Signal    SignalConfig    `toml:"signal"`
	Risk      RiskConfig      `toml:"risk"`
	Kelly     KellyConfig     `toml:"kelly"`
	Regime    RegimeConfig    `toml:"regime"`
	Execution ExecutionConfig `toml:"execution"`
	Broker    BrokerConfig    `toml:"broker"`
	History   HistoryConfig   `toml:"history"`
}

type AppConfig struct {
	Env         string `toml:"env"`
	LogLevel    string `toml:"log_level"`
	LogPath     string `toml:"log_path"`
	MetricsAddr string `toml:"metrics_addr"`
}

// TradingConfig sets capital, symbols and position limits.
type TradingConfig struct {
	Symbols        []string `toml:"symbols"`
	Capital        float64  `toml:"capital"`
	MaxPositionPct float64  `toml:"max_position_pct"` // single-position share of capital, 0~1
	MaxPositions   int      `toml:"max_positions"`
}

type SignalConfig struct {
	MinConfidence  float64 `toml:"min_confidence"`
	MinStrength    float64 `toml:"min_strength"`
	ExitConfidence float64 `toml:"exit_confidence"`
}

type RiskConfig struct {
	ATRStopMult     float64 `toml:"atr_stop_mult"`
	MaxDailyLossPct float64 `toml:"max_daily_loss_pct"`
}

type KellyConfig struct {
	SafetyFraction float64 `toml:"safety_fraction"`
	MinTrades      int     `toml:"min_trades"`
	MaxPositionPct float64 `toml:"max_position_pct"`
	Lookback       int     `toml:"lookback"`
}

type RegimeConfig struct {
	VeryLowMax float64 `toml:"very_low_max"`
	LowMax     float64 `toml:"low_max"`
	NormalMax  float64 `toml:"normal_max"`
	HighMax    float64 `toml:"high_max"`
}

type ExecutionConfig struct {
	ProfilesPath string `toml:"profiles_path"`
}

// BrokerConfig selects the venue adapter.
type BrokerConfig struct {
	Mode          string  `toml:"mode"` // "paper" for now
	IntentMaxAgeS int     `toml:"intent_max_age_seconds"`
	StartingCash  float64 `toml:"starting_cash"`
}

type HistoryConfig struct {
	MaxCached  int    `toml:"max_cached"`
	ReplayPath string `toml:"replay_path"`
}

// Symbols returns the configured symbols, normalized and deduplicated.
func (t TradingConfig) NormalizedSymbols() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(t.Symbols))
	for _, s := range t.Symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// keySet tracks which field paths the config file set explicitly.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault describes one field's default-population rule.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
