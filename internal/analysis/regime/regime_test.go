package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alphatick/internal/types"
)

func TestDetect(t *testing.T) {
	t.Run("high volatility cuts size", func(t *testing.T) {
		d := NewDetector(DefaultThresholds())
		res := d.Detect(200, 2200)
		assert.Equal(t, types.RegimeHighVol, res.Regime)
		assert.InDelta(t, 9.09, res.VolatilityPct, 0.01)
		assert.Equal(t, 0.7, res.PositionSizeMult)
		assert.Equal(t, 1.25, res.StopLossMult)
	})

	t.Run("band classification", func(t *testing.T) {
		d := NewDetector(DefaultThresholds())
		cases := []struct {
			atr  float64
			want types.VolatilityRegime
		}{
			{0.5, types.RegimeExtremeLowVol}, // 0.5%
			{2.0, types.RegimeLowVol},        // 2%
			{4.5, types.RegimeNormal},        // 4.5%
			{8.0, types.RegimeHighVol},       // 8%
			{12.0, types.RegimeExtremeVol},   // 12%
		}
		for _, tc := range cases {
			res := d.Detect(tc.atr, 100)
			assert.Equal(t, tc.want, res.Regime, "atr=%v", tc.atr)
		}
	})

	t.Run("boundaries belong to the upper band", func(t *testing.T) {
		d := NewDetector(DefaultThresholds())
		assert.Equal(t, types.RegimeLowVol, d.Detect(1, 100).Regime)
		assert.Equal(t, types.RegimeNormal, d.Detect(3, 100).Regime)
		assert.Equal(t, types.RegimeHighVol, d.Detect(6, 100).Regime)
		assert.Equal(t, types.RegimeExtremeVol, d.Detect(10, 100).Regime)
	})

	t.Run("non-positive close falls back to NORMAL", func(t *testing.T) {
		d := NewDetector(DefaultThresholds())
		res := d.Detect(5, 0)
		assert.Equal(t, types.RegimeNormal, res.Regime)
		assert.Equal(t, 0.0, res.VolatilityPct)
	})

	t.Run("extreme low vol earns larger size", func(t *testing.T) {
		d := NewDetector(DefaultThresholds())
		res := d.Detect(0.2, 100)
		assert.Equal(t, types.RegimeExtremeLowVol, res.Regime)
		assert.Equal(t, 1.5, res.PositionSizeMult)
		assert.Equal(t, 0.8, res.StopLossMult)
	})
}

func TestCurrent(t *testing.T) {
	d := NewDetector(DefaultThresholds())
	assert.Equal(t, types.RegimeNormal, d.Current())

	d.Detect(12, 100)
	assert.Equal(t, types.RegimeExtremeVol, d.Current())
}

func TestStability(t *testing.T) {
	d := NewDetector(DefaultThresholds())
	assert.Equal(t, 0.5, d.Stability(), "insufficient history")

	for i := 0; i < 20; i++ {
		d.Detect(4, 100)
	}
	assert.Equal(t, 1.0, d.Stability())

	// one regime flip inside the 20-sample window
	for i := 0; i < 10; i++ {
		d.Detect(12, 100)
	}
	assert.Equal(t, 0.5, d.Stability())
}

func TestIsTransitioning(t *testing.T) {
	d := NewDetector(DefaultThresholds())
	assert.False(t, d.IsTransitioning(), "insufficient history")

	for i := 0; i < 10; i++ {
		d.Detect(4, 100)
	}
	assert.False(t, d.IsTransitioning())

	d.Detect(12, 100)
	assert.True(t, d.IsTransitioning())

	for i := 0; i < 5; i++ {
		d.Detect(12, 100)
	}
	assert.False(t, d.IsTransitioning(), "settled in new regime")
}
