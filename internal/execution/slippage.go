package execution

import "alphatick/internal/types"

// SlippageEstimate is the pre-trade impact model output.
type SlippageEstimate struct {
	EstimatedBps   float64
	EstimatedCost  float64 // dollar cost of walking the book vs best level
	LiquidityRatio float64 // order size / visible side liquidity
	Confidence     float64 // grows with book depth, caps at 1
}

// EstimateSlippage models expected impact for taking qty against the
// book. A BUY consumes asks, a SELL consumes bids. The bps estimate is
// liquidity ratio scaled by a volatility multiplier; the cost estimate
// walks the visible levels against the best price.
func EstimateSlippage(book types.OrderBookSnapshot, sig types.TradeSignal, qty int64, atrPct float64) SlippageEstimate {
	levels := book.Asks
	if sig == types.SignalSell {
		levels = book.Bids
	}

	var sideTotal int64
	for _, l := range levels {
		sideTotal += l.Quantity
	}
	if sideTotal < 1 {
		sideTotal = 1
	}
	ratio := float64(qty) / float64(sideTotal)

	volMult := atrPct
	if volMult < 1 {
		volMult = 1
	}
	bps := ratio * volMult * 0.5 * 100

	est := SlippageEstimate{
		EstimatedBps:   bps,
		LiquidityRatio: ratio,
		Confidence:     float64(len(levels)) / 5,
	}
	if est.Confidence > 1 {
		est.Confidence = 1
	}

	if len(levels) > 0 {
		best := levels[0].Price
		remaining := qty
		var cost float64
		for _, l := range levels {
			if remaining <= 0 {
				break
			}
			take := l.Quantity
			if take > remaining {
				take = remaining
			}
			diff := l.Price - best
			if diff < 0 {
				diff = -diff
			}
			cost += diff * float64(take)
			remaining -= take
		}
		est.EstimatedCost = cost
	}
	return est
}
