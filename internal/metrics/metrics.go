// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the engine's metric families.
type Recorder struct {
	ticksProcessed *prometheus.CounterVec
	signals        *prometheus.CounterVec
	tradesOpened   *prometheus.CounterVec
	tradesClosed   *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	dailyPnL       prometheus.Gauge
	slippageBps    *prometheus.HistogramVec
	decisionTime   *prometheus.HistogramVec
}

// New builds a Recorder registered against reg. Pass
// prometheus.NewRegistry() in tests to keep them isolated.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		ticksProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alphatick_ticks_processed_total",
				Help: "Ticks consumed by the trading loop",
			},
			[]string{"symbol"},
		),
		signals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alphatick_signals_total",
				Help: "Signals generated, by direction",
			},
			[]string{"symbol", "signal"},
		),
		tradesOpened: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alphatick_trades_opened_total",
				Help: "Positions opened, by side",
			},
			[]string{"symbol", "side"},
		),
		tradesClosed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alphatick_trades_closed_total",
				Help: "Positions closed, by exit reason",
			},
			[]string{"symbol", "reason"},
		),
		rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alphatick_confirmations_rejected_total",
				Help: "Trade confirmations rejected, by gate",
			},
			[]string{"symbol", "gate"},
		),
		dailyPnL: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "alphatick_daily_realized_pnl",
				Help: "Realized P&L for the current session",
			},
		),
		slippageBps: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "alphatick_fill_slippage_bps",
				Help:    "Realized fill slippage in basis points",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50, 100},
			},
			[]string{"symbol", "strategy"},
		),
		decisionTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "alphatick_decision_duration_seconds",
				Help:    "Time from fresh tick to decision",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
	}
}

var (
	defaultOnce sync.Once
	defaultRec  *Recorder
)

// Default returns the process-wide recorder bound to the default
// Prometheus registry. Safe to call from multiple goroutines.
func Default() *Recorder {
	defaultOnce.Do(func() {
		defaultRec = New(prometheus.DefaultRegisterer)
	})
	return defaultRec
}

func (r *Recorder) TickProcessed(symbol string) {
	r.ticksProcessed.WithLabelValues(symbol).Inc()
}

func (r *Recorder) SignalGenerated(symbol, signal string) {
	r.signals.WithLabelValues(symbol, signal).Inc()
}

func (r *Recorder) TradeOpened(symbol, side string) {
	r.tradesOpened.WithLabelValues(symbol, side).Inc()
}

func (r *Recorder) TradeClosed(symbol, reason string) {
	r.tradesClosed.WithLabelValues(symbol, reason).Inc()
}

func (r *Recorder) ConfirmationRejected(symbol, gate string) {
	r.rejections.WithLabelValues(symbol, gate).Inc()
}

func (r *Recorder) SetDailyPnL(pnl float64) {
	r.dailyPnL.Set(pnl)
}

func (r *Recorder) ObserveSlippage(symbol, strategy string, bps float64) {
	r.slippageBps.WithLabelValues(symbol, strategy).Observe(bps)
}

func (r *Recorder) ObserveDecisionTime(symbol string, seconds float64) {
	r.decisionTime.WithLabelValues(symbol).Observe(seconds)
}
