package calculator

// EMA computes the exponential moving average with α = 2/(period+1), seeded
// by the simple average of the first period values. The result is
// right-aligned to values and has len(values)-period+1 points; it is empty
// when there is not enough data.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return []float64{}
	}

	prev, err := CalculateSMA(values[:period], period)
	if err != nil {
		return []float64{}
	}

	alpha := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)
	out = append(out, prev)

	for _, v := range values[period:] {
		prev = (v-prev)*alpha + prev
		out = append(out, prev)
	}
	return out
}
