package strategy

import (
	"github.com/shopspring/decimal"

	"StockScreener/internal/model"
)

// Rule holds the thresholds of the screening rule.
type Rule struct {
	// MinBars is the minimum history length required to evaluate a symbol.
	MinBars int
	// Premium is the fraction the price must exceed the EMA by (0.03 = 3%).
	Premium decimal.Decimal
}

// DefaultRule requires 200 bars and a price 3% above the EMA.
var DefaultRule = Rule{MinBars: 200, Premium: decimal.NewFromFloat(0.03)}

// NewRule builds a Rule from a percentage premium.
func NewRule(minBars int, premiumPct float64) Rule {
	return Rule{
		MinBars: minBars,
		Premium: decimal.NewFromFloat(premiumPct).Div(decimal.NewFromInt(100)),
	}
}

// priceAboveEMA reports price > (1+premium)*ema, compared in decimal so
// that the boundary is exact.
func (r Rule) priceAboveEMA(price, ema float64) bool {
	threshold := decimal.NewFromFloat(ema).Mul(decimal.NewFromInt(1).Add(r.Premium))
	return decimal.NewFromFloat(price).GreaterThan(threshold)
}

// macdBelowSignal: MACD under its signal line.
func macdBelowSignal(p model.MACDPoint) bool {
	return p.MACD < p.Signal
}

// macdAboveSignal: MACD over its signal line.
func macdAboveSignal(p model.MACDPoint) bool {
	return p.MACD > p.Signal
}

// bothNegative: MACD and signal still below zero.
func bothNegative(p model.MACDPoint) bool {
	return p.MACD < 0 && p.Signal < 0
}
