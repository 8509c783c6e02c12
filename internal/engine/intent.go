package engine

import (
	"context"
	"fmt"
	"time"

	"alphatick/internal/logger"
	"alphatick/internal/types"
)

// ProcessIntent handles an externally produced trade intent with the
// block-and-skip discipline: the intent is only a prompt to look at the
// market, never an instruction. The loop fetches a fresh quote,
// re-scores with its own indicators, and acts only if its own decision
// agrees with the intent's direction and clears confirmation.
func (l *TradingLoop) ProcessIntent(ctx context.Context, raw []byte) (TickOutcome, error) {
	outcome := TickOutcome{Action: types.ActionHold}

	it, err := l.decoder.Decode(raw)
	if err != nil {
		l.stats.IntentsRejected++
		return outcome, fmt.Errorf("decode intent: %w", err)
	}
	if err := l.decoder.CheckFresh(it); err != nil {
		l.stats.IntentsRejected++
		logger.Warnf("engine: %s stale intent skipped: %v", l.cfg.Symbol, err)
		return outcome, nil
	}
	if it.Symbol != l.cfg.Symbol {
		l.stats.IntentsRejected++
		return outcome, fmt.Errorf("intent symbol %s does not match loop %s", it.Symbol, l.cfg.Symbol)
	}
	if it.Signal == types.SignalHold {
		l.stats.IntentsRejected++
		return outcome, nil
	}

	quote, err := l.adapter.GetQuote(ctx, l.cfg.Symbol)
	if err != nil {
		l.stats.IntentsRejected++
		return outcome, fmt.Errorf("refresh quote for intent: %w", err)
	}

	// re-decide with fresh data: the quote becomes a flat tick so the
	// whole pipeline runs on current prices
	tick := types.Tick{
		Timestamp: time.Now(),
		Symbol:    l.cfg.Symbol,
		Open:      quote.Price,
		High:      quote.Ask,
		Low:       quote.Bid,
		Close:     quote.Price,
		Volume:    quote.Volume,
	}
	outcome, err = l.ProcessTick(ctx, tick)
	if err != nil {
		return outcome, err
	}

	// the intent is accepted only when the loop independently reached
	// the same direction
	if outcome.Action == types.ActionEntry && outcome.Signal.Signal == it.Signal {
		l.stats.IntentsAccepted++
		logger.Infof("engine: %s intent from %s confirmed (%s conf %.2f)",
			l.cfg.Symbol, it.Source, it.Signal, it.Confidence)
	} else {
		l.stats.IntentsRejected++
		logger.Infof("engine: %s intent from %s skipped, loop decided %s",
			l.cfg.Symbol, it.Source, outcome.Action)
	}
	return outcome, nil
}
