package strategy

import "StockScreener/internal/model"

// Evaluate applies the rule to the latest and previous indicator points.
//
// If the history is too short (fewer than MinBars bars, or fewer than two
// EMA or MACD points) it returns (nil, nil). Otherwise the Diagnostic is
// always returned, and the SignalResult only when all four predicates hold:
//
//  1. price above EMA by the premium
//  2. MACD below signal on the previous point
//  3. MACD above signal on the latest point
//  4. MACD and signal both negative on the latest point
func Evaluate(sym model.Symbol, bars model.BarSeries, ind model.IndicatorSet, rule Rule) (*model.SignalResult, *model.Diagnostic) {
	if len(bars) < rule.MinBars || len(ind.EMA) < 2 || len(ind.MACD) < 2 {
		return nil, nil
	}
	last, ok := bars.Last()
	if !ok {
		return nil, nil
	}

	price := last.Close
	emaLast := ind.EMA[len(ind.EMA)-1]
	macdLast := ind.MACD[len(ind.MACD)-1]
	macdPrev := ind.MACD[len(ind.MACD)-2]

	snapshot := model.SignalResult{
		Symbol:       sym.Symbol,
		Name:         sym.Name,
		CurrentPrice: price,
		EMA200:       emaLast,
		MACD:         macdLast,
	}

	diag := &model.Diagnostic{
		SignalResult:          snapshot,
		PriceAboveEMA:         rule.priceAboveEMA(price, emaLast),
		MACDBelowSignalPrev:   macdBelowSignal(macdPrev),
		MACDAboveSignalLast:   macdAboveSignal(macdLast),
		MACDAndSignalNegative: bothNegative(macdLast),
	}
	diag.Qualified = diag.PriceAboveEMA && diag.MACDBelowSignalPrev &&
		diag.MACDAboveSignalLast && diag.MACDAndSignalNegative

	if !diag.Qualified {
		return nil, diag
	}
	result := snapshot
	return &result, diag
}
