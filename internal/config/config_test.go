package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("minimal file fills defaults", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "config.yaml", `
trading:
  symbols: ["aapl", "msft"]
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Trading.NormalizedSymbols())
		assert.Equal(t, 100000.0, cfg.Trading.Capital)
		assert.Equal(t, 0.25, cfg.Trading.MaxPositionPct)
		assert.Equal(t, 3, cfg.Trading.MaxPositions)
		assert.Equal(t, 0.65, cfg.Signal.MinConfidence)
		assert.Equal(t, 2.0, cfg.Risk.ATRStopMult)
		assert.Equal(t, 2.0, cfg.Risk.MaxDailyLossPct)
		assert.Equal(t, 0.25, cfg.Kelly.SafetyFraction)
		assert.Equal(t, 20, cfg.Kelly.MinTrades)
		assert.Equal(t, 1.0, cfg.Regime.VeryLowMax)
		assert.Equal(t, 10.0, cfg.Regime.HighMax)
		assert.Equal(t, "paper", cfg.Broker.Mode)
		assert.Equal(t, 30, cfg.Broker.IntentMaxAgeS)
		assert.Equal(t, ":9991", cfg.App.MetricsAddr)
		assert.Equal(t, "dev", cfg.App.Env)
	})

	t.Run("explicit values win over defaults", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "config.yaml", `
app:
  env: prod
  log_level: warn
trading:
  symbols: ["NVDA"]
  capital: 250000
  max_position_pct: 0.1
signal:
  min_confidence: 0.8
risk:
  max_daily_loss_pct: 1.5
broker:
  starting_cash: 50000
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "prod", cfg.App.Env)
		assert.Equal(t, 250000.0, cfg.Trading.Capital)
		assert.Equal(t, 0.1, cfg.Trading.MaxPositionPct)
		assert.Equal(t, 0.8, cfg.Signal.MinConfidence)
		assert.Equal(t, 1.5, cfg.Risk.MaxDailyLossPct)
		assert.Equal(t, 50000.0, cfg.Broker.StartingCash)
	})

	t.Run("includes load first and the including file wins", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "base.yaml", `
trading:
  symbols: ["AAPL"]
  capital: 111111
signal:
  min_confidence: 0.7
`)
		path := writeConfig(t, dir, "config.yaml", `
include:
  - base.yaml
trading:
  capital: 222222
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 222222.0, cfg.Trading.Capital)
		assert.Equal(t, 0.7, cfg.Signal.MinConfidence, "included value survives")
		assert.Equal(t, []string{"AAPL"}, cfg.Trading.NormalizedSymbols())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			"no symbols",
			"trading:\n  capital: 1000\n",
			"trading.symbols",
		},
		{
			"position pct above one",
			"trading:\n  symbols: [\"AAPL\"]\n  max_position_pct: 1.5\n",
			"trading.max_position_pct",
		},
		{
			"confidence above one",
			"trading:\n  symbols: [\"AAPL\"]\nsignal:\n  min_confidence: 1.2\n",
			"signal.min_confidence",
		},
		{
			"regime thresholds out of order",
			"trading:\n  symbols: [\"AAPL\"]\nregime:\n  very_low_max: 5\n  low_max: 3\n",
			"regime thresholds",
		},
		{
			"unsupported broker",
			"trading:\n  symbols: [\"AAPL\"]\nbroker:\n  mode: live\n",
			"broker.mode",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.yaml", tc.body)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNormalizedSymbols(t *testing.T) {
	trading := TradingConfig{Symbols: []string{" aapl", "AAPL", "msft ", "", "nvda"}}
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, trading.NormalizedSymbols())
}

func TestWatchReloadsOnChange(t *testing.T) {
	t.Run("rejects empty path and nil callback", func(t *testing.T) {
		require.Error(t, Watch("", func(*Config) {}))
		require.Error(t, Watch("somewhere.yaml", nil))
	})

	t.Run("delivers validated config after a rewrite", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "config.yaml", `
trading:
  symbols: ["AAPL"]
  capital: 100000
`)
		var mu sync.Mutex
		var got *Config
		require.NoError(t, Watch(path, func(c *Config) {
			mu.Lock()
			got = c
			mu.Unlock()
		}))

		writeConfig(t, dir, "config.yaml", `
trading:
  symbols: ["AAPL"]
  capital: 250000
signal:
  min_confidence: 0.8
`)
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return got != nil && got.Trading.Capital == 250000
		}, 3*time.Second, 50*time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 0.8, got.Signal.MinConfidence)
		assert.Equal(t, 3, got.Trading.MaxPositions) // defaults still applied
	})
}
