package calculator

import "StockScreener/internal/model"

// MACD computes the MACD line (fast EMA - slow EMA), its signal EMA and the
// histogram. Only points where all three are defined are returned, so the
// output is right-aligned to values with len(values)-slow-signal+2 points.
func MACD(values []float64, fast, slow, signal int) []model.MACDPoint {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return []model.MACDPoint{}
	}

	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)
	if len(slowEMA) == 0 {
		return []model.MACDPoint{}
	}

	// fastEMA starts slow-fast points earlier than slowEMA.
	offset := slow - fast
	line := make([]float64, len(slowEMA))
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalLine := EMA(line, signal)
	points := make([]model.MACDPoint, len(signalLine))
	for j, s := range signalLine {
		m := line[j+signal-1]
		points[j] = model.MACDPoint{MACD: m, Signal: s, Histogram: m - s}
	}
	return points
}
