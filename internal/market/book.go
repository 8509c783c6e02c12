package market

import (
	"time"

	"alphatick/internal/types"
)

// BookSource supplies an order book snapshot for a symbol. Live
// adapters stream real depth; SyntheticBook derives one from ticks
// when no depth feed is available.
type BookSource interface {
	Snapshot(symbol string) (types.OrderBookSnapshot, bool)
}

const bookDepth = 5

// SyntheticBook builds a plausible five-level book around the last
// tick. The bar's direction skews the bid/ask quantities: a strong up
// bar puts more size on the bid, a down bar on the ask.
type SyntheticBook struct {
	last map[string]types.Tick
}

func NewSyntheticBook() *SyntheticBook {
	return &SyntheticBook{last: make(map[string]types.Tick)}
}

// Observe records the latest tick for a symbol.
func (b *SyntheticBook) Observe(tick types.Tick) {
	b.last[tick.Symbol] = tick
}

// Snapshot synthesizes the book from the most recent tick.
func (b *SyntheticBook) Snapshot(symbol string) (types.OrderBookSnapshot, bool) {
	tick, ok := b.last[symbol]
	if !ok {
		return types.OrderBookSnapshot{}, false
	}
	return SynthesizeBook(tick), true
}

// SynthesizeBook derives a book from one tick. The bar bias is
// (close-open) over the bar range, clamped to +-0.8, and shifts volume
// from one side to the other. Levels step out half a basis point each
// and thin toward the back of the book.
func SynthesizeBook(tick types.Tick) types.OrderBookSnapshot {
	barRange := tick.High - tick.Low
	if barRange < 0.01 {
		barRange = 0.01
	}
	bias := (tick.Close - tick.Open) / barRange
	if bias > 0.8 {
		bias = 0.8
	}
	if bias < -0.8 {
		bias = -0.8
	}

	baseQty := tick.Volume / 10
	if baseQty < 1 {
		baseQty = 1
	}

	step := tick.Close * 0.0005
	if step < 0.01 {
		step = 0.01
	}

	snap := types.OrderBookSnapshot{
		Symbol:    tick.Symbol,
		Timestamp: tick.Timestamp,
	}
	for i := 0; i < bookDepth; i++ {
		decay := 1 - 0.15*float64(i)
		bidQty := int64(baseQty * (1 + bias) * decay)
		askQty := int64(baseQty * (1 - bias) * decay)
		if bidQty < 1 {
			bidQty = 1
		}
		if askQty < 1 {
			askQty = 1
		}
		snap.Bids = append(snap.Bids, types.OrderBookLevel{
			Price:    tick.Close - step*float64(i+1),
			Quantity: bidQty,
			Orders:   1 + i,
		})
		snap.Asks = append(snap.Asks, types.OrderBookLevel{
			Price:    tick.Close + step*float64(i+1),
			Quantity: askQty,
			Orders:   1 + i,
		})
	}
	return snap
}

// TickSource feeds ticks to a trading loop. Replay sources deliver
// recorded bars; live adapters wrap a broker stream.
type TickSource interface {
	Ticks() <-chan types.Tick
	Close() error
}

// ReplaySource plays back a fixed tick series, optionally pacing
// delivery. A zero pace delivers as fast as the consumer reads.
type ReplaySource struct {
	ticks []types.Tick
	pace  time.Duration
	out   chan types.Tick
	done  chan struct{}
}

func NewReplaySource(ticks []types.Tick, pace time.Duration) *ReplaySource {
	s := &ReplaySource{
		ticks: ticks,
		pace:  pace,
		out:   make(chan types.Tick),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *ReplaySource) run() {
	defer close(s.out)
	for _, t := range s.ticks {
		if s.pace > 0 {
			select {
			case <-time.After(s.pace):
			case <-s.done:
				return
			}
		}
		select {
		case s.out <- t:
		case <-s.done:
			return
		}
	}
}

func (s *ReplaySource) Ticks() <-chan types.Tick { return s.out }

func (s *ReplaySource) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}
