package market

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphatick/internal/types"
)

func TestSynthesizeBook(t *testing.T) {
	t.Run("five levels either side", func(t *testing.T) {
		snap := SynthesizeBook(types.Tick{
			Symbol: "AAPL", Open: 100, High: 101, Low: 99.5, Close: 100.5, Volume: 5000,
		})
		require.Len(t, snap.Bids, 5)
		require.Len(t, snap.Asks, 5)
		assert.Equal(t, "AAPL", snap.Symbol)

		// bids descend from just below close, asks ascend above it
		step := 100.5 * 0.0005
		assert.InDelta(t, 100.5-step, snap.Bids[0].Price, 1e-9)
		assert.InDelta(t, 100.5+step, snap.Asks[0].Price, 1e-9)
		assert.Greater(t, snap.Bids[0].Price, snap.Bids[4].Price)
		assert.Less(t, snap.Asks[0].Price, snap.Asks[4].Price)
	})

	t.Run("up bar skews size to the bid", func(t *testing.T) {
		snap := SynthesizeBook(types.Tick{
			Symbol: "AAPL", Open: 100, High: 101, Low: 100, Close: 100.8, Volume: 5000,
		})
		assert.Greater(t, snap.BidVolume(), snap.AskVolume())
	})

	t.Run("down bar skews size to the ask", func(t *testing.T) {
		snap := SynthesizeBook(types.Tick{
			Symbol: "AAPL", Open: 100.8, High: 101, Low: 100, Close: 100.1, Volume: 5000,
		})
		assert.Less(t, snap.BidVolume(), snap.AskVolume())
	})

	t.Run("levels thin toward the back", func(t *testing.T) {
		snap := SynthesizeBook(types.Tick{
			Symbol: "AAPL", Open: 100, High: 100.5, Low: 99.5, Close: 100, Volume: 10000,
		})
		assert.Greater(t, snap.Bids[0].Quantity, snap.Bids[4].Quantity)
	})

	t.Run("tiny volume still quotes a share", func(t *testing.T) {
		snap := SynthesizeBook(types.Tick{Symbol: "AAPL", Close: 100, Volume: 0})
		for i := 0; i < 5; i++ {
			assert.GreaterOrEqual(t, snap.Bids[i].Quantity, int64(1))
			assert.GreaterOrEqual(t, snap.Asks[i].Quantity, int64(1))
		}
	})
}

func TestSyntheticBookSource(t *testing.T) {
	b := NewSyntheticBook()
	_, ok := b.Snapshot("AAPL")
	assert.False(t, ok, "no tick observed yet")

	b.Observe(types.Tick{Symbol: "AAPL", Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 2000})
	snap, ok := b.Snapshot("AAPL")
	require.True(t, ok)
	assert.Equal(t, "AAPL", snap.Symbol)

	_, ok = b.Snapshot("MSFT")
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	got, err := s.Get(ctx, "AAPL", "1h")
	require.NoError(t, err)
	assert.Nil(t, got)

	candles := []Candle{{Open: 1, Close: 2}, {Open: 2, Close: 3}}
	require.NoError(t, s.Put(ctx, "AAPL", "1h", candles, 0))

	got, err = s.Get(ctx, "AAPL", "1h")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	t.Run("trims to the newest bars", func(t *testing.T) {
		more := []Candle{{Close: 4}, {Close: 5}, {Close: 6}}
		require.NoError(t, s.Put(ctx, "AAPL", "1h", more, 3))
		got, err := s.Get(ctx, "AAPL", "1h")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, 4.0, got[0].Close)
		assert.Equal(t, 6.0, got[2].Close)
	})

	t.Run("intervals are independent", func(t *testing.T) {
		got, err := s.Get(ctx, "AAPL", "1d")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func writeTickFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ticks.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadTicks(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		path := writeTickFile(t, `[
			{"open":100,"high":101,"low":99,"close":100.5,"volume":1200,"timestamp":1764670200000},
			{"open":100.5,"high":102,"low":100,"close":101.2,"volume":900}
		]`)
		ticks, err := LoadTicks(path, "AAPL")
		require.NoError(t, err)
		require.Len(t, ticks, 2)
		assert.Equal(t, "AAPL", ticks[0].Symbol)
		assert.Equal(t, 100.5, ticks[0].Close)
		assert.Equal(t, time.UnixMilli(1764670200000), ticks[0].Timestamp)
	})

	t.Run("ticks envelope with extra fields", func(t *testing.T) {
		path := writeTickFile(t, `{"recorder":"v2","ticks":[{"close":50,"volume":10}]}`)
		ticks, err := LoadTicks(path, "AAPL")
		require.NoError(t, err)
		require.Len(t, ticks, 1)
	})

	t.Run("filters other symbols", func(t *testing.T) {
		path := writeTickFile(t, `[
			{"symbol":"AAPL","close":100},
			{"symbol":"MSFT","close":400},
			{"symbol":"AAPL","close":101}
		]`)
		ticks, err := LoadTicks(path, "AAPL")
		require.NoError(t, err)
		assert.Len(t, ticks, 2)
	})

	t.Run("rejects files without ticks", func(t *testing.T) {
		path := writeTickFile(t, `{"nope":true}`)
		_, err := LoadTicks(path, "AAPL")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTicks(filepath.Join(t.TempDir(), "absent.json"), "AAPL")
		assert.Error(t, err)
	})
}

func TestReplaySource(t *testing.T) {
	t.Run("delivers all ticks then closes", func(t *testing.T) {
		ticks := []types.Tick{{Close: 1}, {Close: 2}, {Close: 3}}
		src := NewReplaySource(ticks, 0)
		defer src.Close()

		var got []types.Tick
		for tick := range src.Ticks() {
			got = append(got, tick)
		}
		assert.Equal(t, ticks, got)
	})

	t.Run("close stops delivery", func(t *testing.T) {
		ticks := make([]types.Tick, 1000)
		src := NewReplaySource(ticks, time.Millisecond)
		<-src.Ticks()
		require.NoError(t, src.Close())
		require.NoError(t, src.Close(), "close is idempotent")

		deadline := time.After(time.Second)
		for {
			select {
			case _, ok := <-src.Ticks():
				if !ok {
					return
				}
			case <-deadline:
				t.Fatal("source did not stop after Close")
			}
		}
	})
}
