package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphatick/internal/types"
)

func TestSetStop(t *testing.T) {
	t.Run("long stop sits below entry", func(t *testing.T) {
		m := NewPositionRiskManager(2.0)
		level := m.SetStop("AAPL", types.SideLong, 100, 1.5)
		assert.Equal(t, 97.0, level.StopPrice)
		assert.Equal(t, 100.0, level.HighestPrice)
	})

	t.Run("short stop sits above entry", func(t *testing.T) {
		m := NewPositionRiskManager(2.0)
		level := m.SetStop("AAPL", types.SideShort, 100, 1.5)
		assert.Equal(t, 103.0, level.StopPrice)
		assert.Equal(t, 100.0, level.LowestPrice)
	})

	t.Run("rounds to cents", func(t *testing.T) {
		m := NewPositionRiskManager(2.0)
		level := m.SetStop("AAPL", types.SideLong, 100, 0.333)
		assert.Equal(t, 99.33, level.StopPrice)
	})

	t.Run("zero multiplier falls back to default", func(t *testing.T) {
		m := NewPositionRiskManager(0)
		level := m.SetStop("AAPL", types.SideLong, 100, 1)
		assert.Equal(t, 98.0, level.StopPrice)
	})
}

func TestUpdateTrailingStop(t *testing.T) {
	t.Run("long stop only rises", func(t *testing.T) {
		m := NewPositionRiskManager(2.0)
		m.SetStop("AAPL", types.SideLong, 100, 1) // stop 98

		level, err := m.UpdateTrailingStop("AAPL", 105, 1)
		require.NoError(t, err)
		assert.Equal(t, 103.0, level.StopPrice)

		// pullback must not lower the stop
		level, err = m.UpdateTrailingStop("AAPL", 101, 1)
		require.NoError(t, err)
		assert.Equal(t, 103.0, level.StopPrice)
		assert.Equal(t, 105.0, level.HighestPrice)
	})

	t.Run("stop never falls over an oscillating walk", func(t *testing.T) {
		m := NewPositionRiskManager(2.0)
		m.SetStop("AAPL", types.SideLong, 100, 1)

		prev := m.Stop("AAPL").StopPrice
		prices := []float64{101, 99.5, 103, 100, 104.5, 102, 106, 103}
		for _, p := range prices {
			level, err := m.UpdateTrailingStop("AAPL", p, 1)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, level.StopPrice, prev)
			prev = level.StopPrice
		}
		assert.Equal(t, 104.0, prev) // peak 106 minus 2*ATR
	})

	t.Run("short stop only falls", func(t *testing.T) {
		m := NewPositionRiskManager(2.0)
		m.SetStop("AAPL", types.SideShort, 100, 1) // stop 102

		level, err := m.UpdateTrailingStop("AAPL", 95, 1)
		require.NoError(t, err)
		assert.Equal(t, 97.0, level.StopPrice)

		level, err = m.UpdateTrailingStop("AAPL", 99, 1)
		require.NoError(t, err)
		assert.Equal(t, 97.0, level.StopPrice)
		assert.Equal(t, 95.0, level.LowestPrice)
	})

	t.Run("unknown symbol errors", func(t *testing.T) {
		m := NewPositionRiskManager(2.0)
		_, err := m.UpdateTrailingStop("MSFT", 100, 1)
		assert.Error(t, err)
	})
}

func TestCheckStop(t *testing.T) {
	t.Run("long triggers at or below the stop", func(t *testing.T) {
		m := NewPositionRiskManager(2.0)
		m.SetStop("AAPL", types.SideLong, 100, 1) // stop 98

		assert.False(t, m.CheckStop("AAPL", 98.01))
		assert.True(t, m.CheckStop("AAPL", 98.00))
		assert.True(t, m.CheckStop("AAPL", 97.50))
	})

	t.Run("short triggers at or above the stop", func(t *testing.T) {
		m := NewPositionRiskManager(2.0)
		m.SetStop("AAPL", types.SideShort, 100, 1) // stop 102

		assert.False(t, m.CheckStop("AAPL", 101.99))
		assert.True(t, m.CheckStop("AAPL", 102.00))
	})

	t.Run("no stop means no trigger", func(t *testing.T) {
		m := NewPositionRiskManager(2.0)
		assert.False(t, m.CheckStop("AAPL", 0.01))
	})
}

func TestClearStop(t *testing.T) {
	m := NewPositionRiskManager(2.0)
	m.SetStop("AAPL", types.SideLong, 100, 1)
	require.NotNil(t, m.Stop("AAPL"))

	m.ClearStop("AAPL")
	assert.Nil(t, m.Stop("AAPL"))
	assert.False(t, m.CheckStop("AAPL", 1))
}
