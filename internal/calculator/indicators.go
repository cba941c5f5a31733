package calculator

import "StockScreener/internal/model"

// Params selects the indicator periods.
type Params struct {
	EMAPeriod    int
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
}

// DefaultParams is EMA(200) with MACD(12, 26, 9).
var DefaultParams = Params{EMAPeriod: 200, FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}

// Compute derives the EMA and MACD series from closing prices.
func Compute(closes []float64, p Params) model.IndicatorSet {
	return model.IndicatorSet{
		EMA:  EMA(closes, p.EMAPeriod),
		MACD: MACD(closes, p.FastPeriod, p.SlowPeriod, p.SignalPeriod),
	}
}
