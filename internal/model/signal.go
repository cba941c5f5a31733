package model

// SignalResult is a symbol that matched the screening rule.
type SignalResult struct {
	Symbol       string
	Name         string
	CurrentPrice float64
	EMA200       float64
	MACD         MACDPoint
}

// Diagnostic records every predicate of the rule for one evaluated symbol,
// whether or not it qualified.
type Diagnostic struct {
	SignalResult

	PriceAboveEMA         bool // price above EMA by the required premium
	MACDBelowSignalPrev   bool
	MACDAboveSignalLast   bool
	MACDAndSignalNegative bool

	Qualified bool
}
