package model

// MACDPoint is one fully defined MACD value.
type MACDPoint struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// IndicatorSet holds indicator series right-aligned to the input closes:
// index i corresponds to closes[len(closes)-len(series)+i].
type IndicatorSet struct {
	EMA  []float64
	MACD []MACDPoint
}
