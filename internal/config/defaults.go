package config

import "strings"

const (
	defaultAppEnv      = "dev"
	defaultAppLogLevel = "info"
	defaultAppLogPath  = "logs/alphatick.log"
	defaultMetricsAddr = ":9991"

	defaultCapital        = 100000
	defaultMaxPositionPct = 0.25
	defaultMaxPositions   = 3

	defaultMinConfidence  = 0.65
	defaultMinStrength    = 0.15
	defaultExitConfidence = 0.4

	defaultATRStopMult     = 2.0
	defaultMaxDailyLossPct = 2.0

	defaultKellySafety   = 0.25
	defaultKellyMinTrade = 20
	defaultKellyMaxPct   = 0.10
	defaultKellyLookback = 100

	defaultRegimeVeryLowMax = 1.0
	defaultRegimeLowMax     = 3.0
	defaultRegimeNormalMax  = 6.0
	defaultRegimeHighMax    = 10.0

	defaultProfilesPath = "configs/profiles.yaml"

	defaultBrokerMode   = "paper"
	defaultIntentMaxAge = 30
	defaultStartingCash = 100000

	defaultHistoryCached = 300
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Trading.applyDefaults(keys)
	c.Signal.applyDefaults(keys)
	c.Risk.applyDefaults(keys)
	c.Kelly.applyDefaults(keys)
	c.Regime.applyDefaults(keys)
	c.Execution.applyDefaults(keys)
	c.Broker.applyDefaults(keys)
	c.History.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
		stringFieldDefault("app.metrics_addr", &a.MetricsAddr, defaultMetricsAddr),
	)
}

func (t *TradingConfig) applyDefaults(keys keySet) {
	if t == nil {
		return
	}
	applyFieldDefaults(keys,
		floatFieldDefault("trading.capital", &t.Capital, defaultCapital),
		floatFieldDefault("trading.max_position_pct", &t.MaxPositionPct, defaultMaxPositionPct),
		intFieldDefault("trading.max_positions", &t.MaxPositions, defaultMaxPositions),
	)
}

func (s *SignalConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		floatFieldDefault("signal.min_confidence", &s.MinConfidence, defaultMinConfidence),
		floatFieldDefault("signal.min_strength", &s.MinStrength, defaultMinStrength),
		floatFieldDefault("signal.exit_confidence", &s.ExitConfidence, defaultExitConfidence),
	)
}

func (r *RiskConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		floatFieldDefault("risk.atr_stop_mult", &r.ATRStopMult, defaultATRStopMult),
		floatFieldDefault("risk.max_daily_loss_pct", &r.MaxDailyLossPct, defaultMaxDailyLossPct),
	)
}

func (k *KellyConfig) applyDefaults(keys keySet) {
	if k == nil {
		return
	}
	applyFieldDefaults(keys,
		floatFieldDefault("kelly.safety_fraction", &k.SafetyFraction, defaultKellySafety),
		intFieldDefault("kelly.min_trades", &k.MinTrades, defaultKellyMinTrade),
		floatFieldDefault("kelly.max_position_pct", &k.MaxPositionPct, defaultKellyMaxPct),
		intFieldDefault("kelly.lookback", &k.Lookback, defaultKellyLookback),
	)
}

func (r *RegimeConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		floatFieldDefault("regime.very_low_max", &r.VeryLowMax, defaultRegimeVeryLowMax),
		floatFieldDefault("regime.low_max", &r.LowMax, defaultRegimeLowMax),
		floatFieldDefault("regime.normal_max", &r.NormalMax, defaultRegimeNormalMax),
		floatFieldDefault("regime.high_max", &r.HighMax, defaultRegimeHighMax),
	)
}

func (e *ExecutionConfig) applyDefaults(keys keySet) {
	if e == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("execution.profiles_path", &e.ProfilesPath, defaultProfilesPath),
	)
}

func (b *BrokerConfig) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("broker.mode", &b.Mode, defaultBrokerMode),
		intFieldDefault("broker.intent_max_age_seconds", &b.IntentMaxAgeS, defaultIntentMaxAge),
		floatFieldDefault("broker.starting_cash", &b.StartingCash, defaultStartingCash),
	)
}

func (h *HistoryConfig) applyDefaults(keys keySet) {
	if h == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("history.max_cached", &h.MaxCached, defaultHistoryCached),
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
