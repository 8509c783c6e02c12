package profilereg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfiles(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const sampleProfiles = `
profiles:
  aapl:
    symbol: AAPL
    twap_slices: 6
    twap_interval_secs: 45
    vwap_slices: 12
    vwap_interval_secs: 60
  msft:
    twap_slices: 4
`

func TestNewRegistry(t *testing.T) {
	t.Run("loads and normalizes symbols", func(t *testing.T) {
		r, err := NewRegistry(writeProfiles(t, sampleProfiles))
		require.NoError(t, err)

		p, ok := r.Profile("aapl")
		require.True(t, ok)
		assert.Equal(t, "AAPL", p.Symbol)
		assert.Equal(t, 6, p.TWAPSlices)

		// symbol falls back to the map key when omitted
		p, ok = r.Profile("MSFT")
		require.True(t, ok)
		assert.Equal(t, "MSFT", p.Symbol)
		assert.Equal(t, 4, p.TWAPSlices)

		_, ok = r.Profile("NVDA")
		assert.False(t, ok)
	})

	t.Run("empty path rejected", func(t *testing.T) {
		_, err := NewRegistry("  ")
		assert.Error(t, err)
	})

	t.Run("missing file rejected", func(t *testing.T) {
		_, err := NewRegistry(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		_, err := NewRegistry(writeProfiles(t, "profiles:\n  aapl:\n    twap_slcies: 5\n"))
		assert.Error(t, err)
	})
}

func TestProviderConversion(t *testing.T) {
	r, err := NewRegistry(writeProfiles(t, sampleProfiles))
	require.NoError(t, err)

	twap := r.TWAPProfile("AAPL")
	assert.Equal(t, 6, twap.Slices)
	assert.Equal(t, 45*time.Second, twap.Interval)

	vwap := r.VWAPProfile("AAPL")
	assert.Equal(t, 12, vwap.Slices)
	assert.Equal(t, time.Minute, vwap.Interval)

	t.Run("unknown symbol yields the zero config", func(t *testing.T) {
		assert.Zero(t, r.TWAPProfile("NVDA"))
		assert.Zero(t, r.VWAPProfile("NVDA"))
	})
}

func TestSchemaRejectsOutOfRangeProfiles(t *testing.T) {
	// 99 TWAP slices exceeds the schema's cap; the profile is skipped,
	// the rest of the file still loads
	r, err := NewRegistry(writeProfiles(t, `
profiles:
  aapl:
    twap_slices: 99
  msft:
    twap_slices: 5
`))
	require.NoError(t, err)
	_, ok := r.Profile("AAPL")
	assert.False(t, ok)
	_, ok = r.Profile("MSFT")
	assert.True(t, ok)
}

func TestSnapshot(t *testing.T) {
	r, err := NewRegistry(writeProfiles(t, sampleProfiles))
	require.NoError(t, err)

	snap := r.Snapshot()
	assert.Equal(t, int64(1), snap.Version)
	assert.Len(t, snap.Profiles, 2)
	assert.False(t, snap.LoadedAt.IsZero())

	// mutating the copy must not leak into the registry
	delete(snap.Profiles, "AAPL")
	_, ok := r.Profile("AAPL")
	assert.True(t, ok)
}
