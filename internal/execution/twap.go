package execution

import (
	"time"

	"github.com/google/uuid"
)

// TWAPConfig controls the time-weighted schedule.
type TWAPConfig struct {
	Slices   int           // 0 means auto-pick from order size
	Interval time.Duration // spacing between releases
}

// twapSliceCount picks the slice count from order size when not set
// explicitly, clamped to [2, 20] and never more than one share a slice.
func twapSliceCount(qty int64, configured int) int {
	n := configured
	if n <= 0 {
		switch {
		case qty <= 50:
			n = 2
		case qty <= 200:
			n = 5
		case qty <= 1000:
			n = 10
		default:
			n = 15
		}
	}
	if n < 2 {
		n = 2
	}
	if n > 20 {
		n = 20
	}
	if int64(n) > qty {
		n = int(qty)
	}
	return n
}

// BuildTWAPSchedule splits qty into equal slices spread at fixed
// intervals from start. The remainder goes one share at a time to the
// earliest slices, so slice quantities always sum to qty exactly.
func BuildTWAPSchedule(parentID string, qty int64, start time.Time, cfg TWAPConfig) []*ChildOrder {
	if qty <= 0 {
		return nil
	}
	n := twapSliceCount(qty, cfg.Slices)
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	base := qty / int64(n)
	remainder := qty % int64(n)

	children := make([]*ChildOrder, 0, n)
	for i := 0; i < n; i++ {
		sliceQty := base
		if int64(i) < remainder {
			sliceQty++
		}
		children = append(children, &ChildOrder{
			ID:        uuid.NewString(),
			ParentID:  parentID,
			Sequence:  i,
			Quantity:  sliceQty,
			ReleaseAt: start.Add(time.Duration(i) * interval),
		})
	}
	return children
}
