// Package engine runs the per-symbol trading loop: each tick flows
// through the indicator suite and the analysis increments, becomes a
// signal, passes (or fails) confirmation, and turns into sliced orders
// against the broker.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"alphatick/internal/analysis/kelly"
	"alphatick/internal/analysis/mtf"
	"alphatick/internal/analysis/orderflow"
	"alphatick/internal/analysis/regime"
	"alphatick/internal/broker"
	"alphatick/internal/execution"
	"alphatick/internal/indicator"
	"alphatick/internal/intent"
	"alphatick/internal/logger"
	"alphatick/internal/market"
	"alphatick/internal/metrics"
	"alphatick/internal/pkg/circuit"
	"alphatick/internal/risk"
	"alphatick/internal/signal"
	"alphatick/internal/types"
)

// Config carries the loop's knobs.
type Config struct {
	Symbol            string
	Capital           float64
	Confirmation      signal.ConfirmationConfig
	Regime            regime.Thresholds
	ExitConfidence    float64 // opposite-signal confidence needed to exit
	IntentMaxAge      time.Duration
	EmergencyExitOnly bool // force MARKET on every exit
}

func (c *Config) applyDefaults() {
	if c.Capital <= 0 {
		c.Capital = 100000
	}
	if c.ExitConfidence <= 0 {
		c.ExitConfidence = 0.4
	}
	if c.Confirmation.MinConfidence == 0 {
		c.Confirmation = signal.DefaultConfirmationConfig()
	}
	if c.Regime == (regime.Thresholds{}) {
		c.Regime = regime.DefaultThresholds()
	}
}

// TickOutcome reports what one tick produced.
type TickOutcome struct {
	Action       types.LoopAction
	Signal       signal.Output
	Confirmation signal.Confirmation
	StopPrice    float64
	ExitReason   string
	Metrics      types.ExecutionMetrics
}

// LoopStats aggregates the loop's running counters.
type LoopStats struct {
	TicksProcessed  int64
	SignalsSeen     int64
	EntriesOpened   int64
	ExitsClosed     int64
	StopsTriggered  int64
	IntentsAccepted int64
	IntentsRejected int64
	AvgDecisionUs   float64

	OrdersByStrategy map[types.ExecutionStrategy]int64
	AvgSlippageBps   float64 // running average over completed parent orders
}

// TradingLoop is the per-symbol engine. Not safe for concurrent use;
// run one goroutine per loop.
type TradingLoop struct {
	cfg Config

	suite    *indicator.Suite
	book     *market.SyntheticBook
	flow     *orderflow.Analyzer
	regimes  *regime.Detector
	frames   *mtf.Analyzer
	kelly    *kelly.Sizer
	gen      *signal.Generator
	confirm  *signal.Confirmer
	risk     *risk.Framework
	exec     *execution.Manager
	adapter  broker.Adapter
	breaker  *circuit.Breaker
	decoder  *intent.Decoder
	recorder *metrics.Recorder

	position *types.Position
	stats    LoopStats
}

// Deps bundles the loop's collaborators so construction stays readable.
type Deps struct {
	Risk     *risk.Framework
	Exec     *execution.Manager
	Adapter  broker.Adapter
	Recorder *metrics.Recorder
	Kelly    *kelly.Sizer
}

func NewTradingLoop(cfg Config, deps Deps) *TradingLoop {
	cfg.applyDefaults()
	if deps.Kelly == nil {
		deps.Kelly = kelly.NewSizer(kelly.Config{})
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.Default()
	}
	return &TradingLoop{
		cfg:      cfg,
		suite:    indicator.NewSuite(),
		book:     market.NewSyntheticBook(),
		flow:     orderflow.NewAnalyzer(),
		regimes:  regime.NewDetector(cfg.Regime),
		frames:   mtf.NewAnalyzer(),
		kelly:    deps.Kelly,
		gen:      signal.NewGenerator(),
		confirm:  signal.NewConfirmer(cfg.Confirmation),
		risk:     deps.Risk,
		exec:     deps.Exec,
		adapter:  deps.Adapter,
		breaker:  circuit.NewBreaker(cfg.Symbol+"-broker", 3, 30*time.Second),
		decoder:  intent.NewDecoder(cfg.IntentMaxAge),
		recorder: deps.Recorder,
	}
}

// Preheat replays historical candles through the indicator suite and
// the hourly timeframe so the loop is decision-ready from the first
// live tick.
func (l *TradingLoop) Preheat(candles []market.Candle) {
	ticks := make([]types.Tick, 0, len(candles))
	for _, c := range candles {
		ticks = append(ticks, types.Tick{
			Timestamp: time.UnixMilli(c.CloseTime),
			Symbol:    l.cfg.Symbol,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		})
	}
	indicator.Preheat(l.suite, ticks)
	l.frames.Preheat(mtf.OneHour, ticks)
}

// PreheatTimeframe feeds a higher timeframe's history.
func (l *TradingLoop) PreheatTimeframe(tf mtf.Timeframe, candles []market.Candle) {
	ticks := make([]types.Tick, 0, len(candles))
	for _, c := range candles {
		ticks = append(ticks, types.Tick{
			Timestamp: time.UnixMilli(c.CloseTime),
			Symbol:    l.cfg.Symbol,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		})
	}
	l.frames.Preheat(tf, ticks)
}

// ResetSession rolls the session-scoped state at the daily boundary:
// the VWAP accumulator restarts while trend and momentum carry over.
func (l *TradingLoop) ResetSession() {
	l.suite.ResetSession()
}

// ApplyThresholds swaps the confirmation gate thresholds. The Confirmer
// locks internally, so this is the one loop mutation safe to call from
// another goroutine (the config reload watcher uses it).
func (l *TradingLoop) ApplyThresholds(cfg signal.ConfirmationConfig) {
	l.confirm.SetConfig(cfg)
}

// Stats returns a copy of the running counters.
func (l *TradingLoop) Stats() LoopStats {
	out := l.stats
	if l.stats.OrdersByStrategy != nil {
		out.OrdersByStrategy = make(map[types.ExecutionStrategy]int64, len(l.stats.OrdersByStrategy))
		for strategy, n := range l.stats.OrdersByStrategy {
			out.OrdersByStrategy[strategy] = n
		}
	}
	return out
}

// Position returns the open position, or nil when flat.
func (l *TradingLoop) Position() *types.Position { return l.position }

// Run consumes the tick source until it closes or the context ends.
func (l *TradingLoop) Run(ctx context.Context, src market.TickSource) error {
	logger.Infof("engine: %s loop starting", l.cfg.Symbol)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick, ok := <-src.Ticks():
			if !ok {
				logger.Infof("engine: %s tick source closed after %d ticks",
					l.cfg.Symbol, l.stats.TicksProcessed)
				return nil
			}
			if _, err := l.ProcessTick(ctx, tick); err != nil {
				logger.Errorf("engine: %s tick error: %v", l.cfg.Symbol, err)
			}
		}
	}
}

// ProcessTick runs one full decision cycle for one tick.
func (l *TradingLoop) ProcessTick(ctx context.Context, tick types.Tick) (TickOutcome, error) {
	started := time.Now()
	outcome := TickOutcome{Action: types.ActionHold}

	l.stats.TicksProcessed++
	l.recorder.TickProcessed(l.cfg.Symbol)

	if paper, ok := l.adapter.(interface{ ObserveTick(types.Tick) }); ok {
		paper.ObserveTick(tick)
	}
	l.book.Observe(tick)

	ind := l.suite.Update(tick)
	l.frames.Update(mtf.OneHour, tick)

	snap, _ := l.book.Snapshot(l.cfg.Symbol)
	flowRes := l.flow.Analyze(snap)

	atr := ind.ATR
	if atr <= 0 {
		atr = tick.Close * 0.01
	}
	regimeRes := l.regimes.Detect(atr, tick.Close)
	mtfRes := l.frames.Analyze()

	kellyStop := tick.Close - atr*2
	kellyRes := l.kelly.Calculate(l.cfg.Capital, tick.Close, kellyStop)

	if !l.suite.Ready() {
		l.observeDecision(started)
		return outcome, nil
	}

	out := l.gen.Generate(ind, flowRes, regimeRes, mtfRes, kellyRes)
	outcome.Signal = out
	l.stats.SignalsSeen++
	l.recorder.SignalGenerated(l.cfg.Symbol, string(out.Signal))

	if l.position != nil {
		return l.managePosition(ctx, tick, atr, out, outcome, started)
	}

	conf := l.confirm.Confirm(out, l.risk.EntryAllowed(), l.openPositionCount())
	outcome.Confirmation = conf
	if !conf.Approved {
		if out.Signal != types.SignalHold && len(conf.Reasons) > 0 {
			l.recorder.ConfirmationRejected(l.cfg.Symbol, conf.Reasons[0])
		}
		l.observeDecision(started)
		return outcome, nil
	}

	return l.openPosition(ctx, tick, atr, out, conf, outcome, started)
}

// managePosition trails the stop and checks for stop or reversal exits.
func (l *TradingLoop) managePosition(ctx context.Context, tick types.Tick, atr float64, out signal.Output, outcome TickOutcome, started time.Time) (TickOutcome, error) {
	l.position.CurrentPrice = tick.Close

	if l.risk.OnTick(l.cfg.Symbol, tick.Close, atr) {
		outcome.Action = types.ActionStopped
		outcome.ExitReason = "stop loss"
		l.stats.StopsTriggered++
		err := l.closePosition(ctx, tick, "stop_loss", true)
		l.observeDecision(started)
		return outcome, err
	}
	if level := l.risk.Positions.Stop(l.cfg.Symbol); level != nil {
		outcome.StopPrice = level.StopPrice
	}

	opposite := (l.position.Side == types.SideLong && out.Signal == types.SignalSell) ||
		(l.position.Side == types.SideShort && out.Signal == types.SignalBuy)
	if opposite && out.Confidence > l.cfg.ExitConfidence {
		outcome.Action = types.ActionExit
		outcome.ExitReason = "signal reversal"
		err := l.closePosition(ctx, tick, "signal_reversal", false)
		l.observeDecision(started)
		return outcome, err
	}

	outcome.Action = types.ActionHoldPosition
	l.observeDecision(started)
	return outcome, nil
}

// openPosition sizes, routes and places the entry.
func (l *TradingLoop) openPosition(ctx context.Context, tick types.Tick, atr float64, out signal.Output, conf signal.Confirmation, outcome TickOutcome, started time.Time) (TickOutcome, error) {
	qty := int64(l.cfg.Capital * conf.PositionSizePct / tick.Close)
	if qty < 1 {
		l.observeDecision(started)
		return outcome, nil
	}

	snap, _ := l.book.Snapshot(l.cfg.Symbol)
	atrPct := atr / tick.Close * 100
	est, strategy := l.exec.Evaluate(snap, out.Signal, qty, atrPct, false)
	outcome.Metrics.PredictedSlippageBps = est.EstimatedBps

	parent, err := l.exec.CreateOrder(l.cfg.Symbol, out.Signal, strategy, qty, tick.Close)
	if err != nil {
		return outcome, fmt.Errorf("create entry order: %w", err)
	}

	side := types.SideLong
	if out.Signal == types.SignalSell {
		side = types.SideShort
	}
	if err := l.placeChildren(ctx, parent, side); err != nil {
		l.exec.Release(parent.ID)
		return outcome, fmt.Errorf("place entry order: %w", err)
	}

	l.position = &types.Position{
		ID:           uuid.NewString(),
		Symbol:       l.cfg.Symbol,
		Side:         side,
		Quantity:     parent.FilledQuantity,
		EntryPrice:   parent.AvgFillPrice,
		CurrentPrice: parent.AvgFillPrice,
		EntryTime:    time.Now(),
	}
	level := l.risk.OnEntry(l.cfg.Symbol, side, parent.AvgFillPrice, atr)

	outcome.Action = types.ActionEntry
	outcome.StopPrice = level.StopPrice
	outcome.Metrics.ActualSlippageBps = parent.TotalSlippageBps()
	l.recorder.ObserveSlippage(l.cfg.Symbol, string(strategy), parent.TotalSlippageBps())
	l.recorder.TradeOpened(l.cfg.Symbol, string(side))
	l.recordOrder(strategy, parent.TotalSlippageBps())
	l.stats.EntriesOpened++
	l.exec.Release(parent.ID)

	logger.Infof("engine: %s opened %s %d @ %.2f stop %.2f (%s)",
		l.cfg.Symbol, side, l.position.Quantity, l.position.EntryPrice, level.StopPrice, strategy)

	l.observeDecision(started)
	return outcome, nil
}

// closePosition unwinds the open position, records the trade result and
// feeds the Kelly sizer and daily tracker.
func (l *TradingLoop) closePosition(ctx context.Context, tick types.Tick, reason string, emergency bool) error {
	pos := l.position
	if pos == nil {
		return nil
	}

	snap, _ := l.book.Snapshot(l.cfg.Symbol)
	exitSignal := types.SignalSell
	if pos.Side == types.SideShort {
		exitSignal = types.SignalBuy
	}
	atrPct := 1.0
	_, strategy := l.exec.Evaluate(snap, exitSignal, pos.Quantity, atrPct, emergency || l.cfg.EmergencyExitOnly)

	parent, err := l.exec.CreateOrder(l.cfg.Symbol, exitSignal, strategy, pos.Quantity, tick.Close)
	if err != nil {
		return fmt.Errorf("create exit order: %w", err)
	}
	exitSide := pos.Side.Opposite()
	if err := l.placeChildren(ctx, parent, exitSide); err != nil {
		l.exec.Release(parent.ID)
		return fmt.Errorf("place exit order: %w", err)
	}

	result := types.TradeResult{
		ID:         uuid.NewString(),
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		Quantity:   pos.Quantity,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  parent.AvgFillPrice,
		EntryTime:  pos.EntryTime,
		ExitTime:   time.Now(),
		ExitReason: reason,
	}
	l.kelly.AddTrade(result)
	l.risk.OnExit(l.cfg.Symbol, result.PnL())
	l.recorder.ObserveSlippage(l.cfg.Symbol, string(strategy), parent.TotalSlippageBps())
	l.recorder.TradeClosed(l.cfg.Symbol, reason)
	l.recordOrder(strategy, parent.TotalSlippageBps())
	l.recorder.SetDailyPnL(l.risk.Daily.RealizedPnL())
	l.stats.ExitsClosed++
	l.exec.Release(parent.ID)
	l.position = nil

	logger.Infof("engine: %s closed %s %d @ %.2f pnl %.2f (%s)",
		result.Symbol, result.Side, result.Quantity, result.ExitPrice, result.PnL(), reason)
	return nil
}

// placeChildren walks a parent's schedule in sequence. Paper and
// backtest runs ignore the release times; a live runner would pace on
// ReleaseAt.
func (l *TradingLoop) placeChildren(ctx context.Context, parent *execution.ParentOrder, side types.TradeSide) error {
	for _, child := range parent.Children {
		if !l.breaker.Allow() {
			return fmt.Errorf("broker breaker open, child %s not placed", child.ID)
		}
		resp, err := l.adapter.PlaceOrder(ctx, types.Order{
			Symbol:   parent.Symbol,
			Side:     side,
			Quantity: child.Quantity,
			Type:     types.OrderMarket,
			Tag:      child.ID,
		})
		if err != nil {
			l.breaker.RecordFailure()
			return err
		}
		l.breaker.RecordSuccess()
		if !resp.Filled() {
			return fmt.Errorf("child %s rejected: %s", child.ID, resp.Message)
		}
		if _, err := l.exec.RecordFill(parent.ID, child.ID, resp.FilledPrice); err != nil {
			return err
		}
	}
	return nil
}

func (l *TradingLoop) openPositionCount() int {
	if l.position != nil {
		return 1
	}
	return 0
}

// recordOrder folds one completed parent order into the per-strategy
// counters and the running slippage average.
func (l *TradingLoop) recordOrder(strategy types.ExecutionStrategy, slippageBps float64) {
	if l.stats.OrdersByStrategy == nil {
		l.stats.OrdersByStrategy = make(map[types.ExecutionStrategy]int64)
	}
	l.stats.OrdersByStrategy[strategy]++
	var total int64
	for _, n := range l.stats.OrdersByStrategy {
		total += n
	}
	l.stats.AvgSlippageBps += (slippageBps - l.stats.AvgSlippageBps) / float64(total)
}

func (l *TradingLoop) observeDecision(started time.Time) {
	elapsed := time.Since(started)
	l.recorder.ObserveDecisionTime(l.cfg.Symbol, elapsed.Seconds())
	us := float64(elapsed.Microseconds())
	n := float64(l.stats.TicksProcessed)
	l.stats.AvgDecisionUs += (us - l.stats.AvgDecisionUs) / n
}
