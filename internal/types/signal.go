package types

// TradeSignal is the directional output of every signal generator.
type TradeSignal string

const (
	SignalBuy  TradeSignal = "BUY"
	SignalSell TradeSignal = "SELL"
	SignalHold TradeSignal = "HOLD"
)

// TradeSide is the direction of a held position.
type TradeSide string

const (
	SideLong  TradeSide = "LONG"
	SideShort TradeSide = "SHORT"
)

// Opposite returns the side used to close a position of this side.
func (s TradeSide) Opposite() TradeSide {
	if s == SideLong {
		return SideShort
	}
	return SideLong
}

// VolatilityRegime classifies ATR-normalized volatility into five bands.
type VolatilityRegime string

const (
	RegimeExtremeLowVol VolatilityRegime = "EXTREME_LOW_VOL"
	RegimeLowVol        VolatilityRegime = "LOW_VOL"
	RegimeNormal        VolatilityRegime = "NORMAL"
	RegimeHighVol       VolatilityRegime = "HIGH_VOL"
	RegimeExtremeVol    VolatilityRegime = "EXTREME_VOL"
)

// ExecutionStrategy is the chosen order placement approach.
type ExecutionStrategy string

const (
	ExecMarket ExecutionStrategy = "MARKET"
	ExecLimit  ExecutionStrategy = "LIMIT"
	ExecTWAP   ExecutionStrategy = "TWAP"
	ExecVWAP   ExecutionStrategy = "VWAP"
)

// LoopAction is the explicit outcome the trading loop produces for every
// tick. A tick is never silently dropped.
type LoopAction string

const (
	ActionHold         LoopAction = "HOLD"
	ActionHoldPosition LoopAction = "HOLD_POSITION"
	ActionEntry        LoopAction = "ENTRY"
	ActionExit         LoopAction = "EXIT"
	ActionStopped      LoopAction = "STOPPED"
)
