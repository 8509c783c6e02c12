package app

import (
	"context"
	"fmt"
	"time"

	"alphatick/internal/analysis/kelly"
	"alphatick/internal/analysis/regime"
	"alphatick/internal/broker"
	"alphatick/internal/broker/paper"
	atcfg "alphatick/internal/config"
	"alphatick/internal/engine"
	"alphatick/internal/execution"
	"alphatick/internal/execution/profilereg"
	"alphatick/internal/logger"
	"alphatick/internal/market"
	"alphatick/internal/metrics"
	"alphatick/internal/risk"
	"alphatick/internal/signal"
)

// AppBuilder assembles the runtime graph. The Fn fields exist so tests
// can substitute pieces without a real broker or tick file.
type AppBuilder struct {
	cfg *atcfg.Config

	brokerFn   func(*atcfg.Config) (broker.Adapter, error)
	profilesFn func(string) (execution.ProfileProvider, error)
	sourceFn   func(*atcfg.Config, string) (market.TickSource, error)
}

type AppBuilderOption func(*AppBuilder)

// WithBroker overrides the broker adapter factory.
func WithBroker(fn func(*atcfg.Config) (broker.Adapter, error)) AppBuilderOption {
	return func(b *AppBuilder) { b.brokerFn = fn }
}

// WithTickSource overrides the per-symbol tick source factory.
func WithTickSource(fn func(*atcfg.Config, string) (market.TickSource, error)) AppBuilderOption {
	return func(b *AppBuilder) { b.sourceFn = fn }
}

func NewAppBuilder(cfg *atcfg.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		brokerFn:   buildBroker,
		profilesFn: buildProfiles,
		sourceFn:   buildTickSource,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := b.cfg

	adapter, err := b.brokerFn(cfg)
	if err != nil {
		return nil, fmt.Errorf("build broker: %w", err)
	}
	if err := adapter.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect broker: %w", err)
	}

	profiles, err := b.profilesFn(cfg.Execution.ProfilesPath)
	if err != nil {
		logger.Warnf("app: execution profiles unavailable, using auto-sizing: %v", err)
		profiles = nil
	}
	execMgr := execution.NewManager(profiles)

	// one daily limit shared by every symbol loop
	daily := risk.NewDailyLimitTracker(cfg.Trading.Capital, cfg.Risk.MaxDailyLossPct)
	recorder := metrics.Default()

	app := &App{
		cfg:     cfg,
		loops:   make(map[string]*engine.TradingLoop),
		sources: make(map[string]market.TickSource),
		daily:   daily,
	}
	app.closers = append(app.closers, func() error {
		return adapter.Disconnect(context.Background())
	})

	for _, symbol := range cfg.Trading.NormalizedSymbols() {
		loopCfg := engine.Config{
			Symbol:  symbol,
			Capital: cfg.Trading.Capital,
			Confirmation: signal.ConfirmationConfig{
				MinConfidence:  cfg.Signal.MinConfidence,
				MinStrength:    cfg.Signal.MinStrength,
				MaxPositionPct: cfg.Trading.MaxPositionPct,
				MaxPositions:   cfg.Trading.MaxPositions,
			},
			Regime: regime.Thresholds{
				ExtremeLow: cfg.Regime.VeryLowMax,
				Low:        cfg.Regime.LowMax,
				Normal:     cfg.Regime.NormalMax,
				High:       cfg.Regime.HighMax,
			},
			ExitConfidence: cfg.Signal.ExitConfidence,
			IntentMaxAge:   time.Duration(cfg.Broker.IntentMaxAgeS) * time.Second,
		}
		sizer := kelly.NewSizer(kelly.Config{
			SafetyFraction: cfg.Kelly.SafetyFraction,
			MinTrades:      cfg.Kelly.MinTrades,
			MaxPositionPct: cfg.Kelly.MaxPositionPct,
			Lookback:       cfg.Kelly.Lookback,
		})
		loop := engine.NewTradingLoop(loopCfg, engine.Deps{
			Risk:     risk.NewFrameworkWithDaily(cfg.Risk.ATRStopMult, daily),
			Exec:     execMgr,
			Adapter:  adapter,
			Recorder: recorder,
			Kelly:    sizer,
		})

		src, err := b.sourceFn(cfg, symbol)
		if err != nil {
			return nil, fmt.Errorf("tick source for %s: %w", symbol, err)
		}
		app.loops[symbol] = loop
		app.sources[symbol] = src
		app.closers = append(app.closers, src.Close)
	}
	logger.Infof("app: built %d symbol loops (broker=%s)", len(app.loops), cfg.Broker.Mode)
	return app, nil
}

func buildBroker(cfg *atcfg.Config) (broker.Adapter, error) {
	switch cfg.Broker.Mode {
	case "paper":
		return paper.NewAdapter(cfg.Broker.StartingCash), nil
	default:
		return nil, fmt.Errorf("unsupported broker mode %q", cfg.Broker.Mode)
	}
}

func buildProfiles(path string) (execution.ProfileProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("no profiles path configured")
	}
	return profilereg.NewRegistry(path)
}

func buildTickSource(cfg *atcfg.Config, symbol string) (market.TickSource, error) {
	if cfg.History.ReplayPath == "" {
		return nil, fmt.Errorf("history.replay_path is required in paper mode")
	}
	ticks, err := market.LoadTicks(cfg.History.ReplayPath, symbol)
	if err != nil {
		return nil, err
	}
	return market.NewReplaySource(ticks, 0), nil
}
