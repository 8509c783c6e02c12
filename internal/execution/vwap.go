package execution

import (
	"time"

	"github.com/google/uuid"
)

// VWAPConfig controls the volume-weighted schedule.
type VWAPConfig struct {
	Slices   int
	Interval time.Duration
}

func vwapSliceCount(qty int64, configured int) int {
	n := configured
	if n <= 0 {
		switch {
		case qty <= 100:
			n = 3
		case qty <= 500:
			n = 8
		case qty <= 2000:
			n = 15
		default:
			n = 20
		}
	}
	if n < 3 {
		n = 3
	}
	if n > 30 {
		n = 30
	}
	if int64(n) > qty {
		n = int(qty)
	}
	return n
}

// BuildVWAPSchedule splits qty along a U-shaped intraday volume curve:
// heavier slices at the open and close, lighter through the middle.
// The weight at normalized time x is 1 + 1.5*(2x-1)^2. The last slice
// absorbs rounding remainder and zero-quantity slices are dropped, so
// quantities still sum to qty exactly.
func BuildVWAPSchedule(parentID string, qty int64, start time.Time, cfg VWAPConfig) []*ChildOrder {
	if qty <= 0 {
		return nil
	}
	n := vwapSliceCount(qty, cfg.Slices)
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	weights := make([]float64, n)
	var totalWeight float64
	for i := 0; i < n; i++ {
		x := 0.5
		if n > 1 {
			x = float64(i) / float64(n-1)
		}
		d := 2*x - 1
		weights[i] = 1 + 1.5*d*d
		totalWeight += weights[i]
	}

	quantities := make([]int64, n)
	var assigned int64
	for i := 0; i < n-1; i++ {
		quantities[i] = int64(float64(qty) * weights[i] / totalWeight)
		assigned += quantities[i]
	}
	quantities[n-1] = qty - assigned

	children := make([]*ChildOrder, 0, n)
	seq := 0
	for i := 0; i < n; i++ {
		if quantities[i] <= 0 {
			continue
		}
		children = append(children, &ChildOrder{
			ID:        uuid.NewString(),
			ParentID:  parentID,
			Sequence:  seq,
			Quantity:  quantities[i],
			ReleaseAt: start.Add(time.Duration(i) * interval),
		})
		seq++
	}
	return children
}
