// Package app is the application-level orchestration: load config,
// build the dependency graph, run one trading loop per symbol plus the
// metrics endpoint.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	atcfg "alphatick/internal/config"
	"alphatick/internal/engine"
	"alphatick/internal/logger"
	"alphatick/internal/market"
	"alphatick/internal/risk"
	"alphatick/internal/scheduler"
	"alphatick/internal/signal"
)

// App holds the assembled runtime.
type App struct {
	cfg     *atcfg.Config
	loops   map[string]*engine.TradingLoop
	sources map[string]market.TickSource
	daily   *risk.DailyLimitTracker
	closers []func() error
}

// NewApp builds the application from config without starting it.
func NewApp(cfg *atcfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run starts every symbol loop and the metrics server, and blocks until
// the context ends or a loop fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	if addr := a.cfg.App.MetricsAddr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: promhttp.Handler()}
		group.Go(func() error {
			logger.Infof("app: metrics listening on %s", addr)
			err := srv.ListenAndServe()
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return srv.Shutdown(shutCtx)
		})
	}

	// session rollover: reset the daily loss latch and every loop's
	// session VWAP at the day boundary
	if a.daily != nil {
		sched := scheduler.NewAlignedScheduler(ctx, 24*time.Hour, 0)
		sched.Name = "session-reset"
		group.Go(func() error {
			sched.Start(func() {
				a.daily.Reset()
				for _, loop := range a.loops {
					loop.ResetSession()
				}
			})
			return nil
		})
	}

	for symbol, loop := range a.loops {
		symbol, loop := symbol, loop
		src, ok := a.sources[symbol]
		if !ok {
			return fmt.Errorf("no tick source for %s", symbol)
		}
		group.Go(func() error {
			return loop.Run(ctx, src)
		})
	}

	err := group.Wait()
	a.close()
	if err == context.Canceled {
		return nil
	}
	return err
}

// ApplyThresholds pushes reloaded gate thresholds into every symbol
// loop. Wired to the config file watcher by the entrypoint.
func (a *App) ApplyThresholds(cfg *atcfg.Config) {
	if a == nil || cfg == nil {
		return
	}
	next := signal.ConfirmationConfig{
		MinConfidence:  cfg.Signal.MinConfidence,
		MinStrength:    cfg.Signal.MinStrength,
		MaxPositionPct: cfg.Trading.MaxPositionPct,
		MaxPositions:   cfg.Trading.MaxPositions,
	}
	for _, loop := range a.loops {
		loop.ApplyThresholds(next)
	}
	logger.Infof("app: confirmation thresholds updated (min_confidence=%.2f, min_strength=%.2f)",
		next.MinConfidence, next.MinStrength)
}

// Loop exposes a symbol's loop for replay harnesses and tests.
func (a *App) Loop(symbol string) *engine.TradingLoop {
	if a == nil {
		return nil
	}
	return a.loops[symbol]
}

func (a *App) close() {
	for _, fn := range a.closers {
		if fn == nil {
			continue
		}
		if err := fn(); err != nil {
			logger.Warnf("app: close error: %v", err)
		}
	}
}
