package model

import "time"

// Bar represents a single OHLCV bar. JSON tags follow the Alpaca v2 bar payload.
type Bar struct {
	Time       time.Time `json:"t"`
	Open       float64   `json:"o"`
	High       float64   `json:"h"`
	Low        float64   `json:"l"`
	Close      float64   `json:"c"`
	Volume     int64     `json:"v"`
	TradeCount *int64    `json:"n,omitempty"`
	VWAP       *float64  `json:"vw,omitempty"`
}

// BarSeries is an ascending sequence of bars for one symbol and timeframe.
type BarSeries []Bar

// Closes extracts the closing prices in order.
func (s BarSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar. ok is false for an empty series.
func (s BarSeries) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Symbol is a listed, tradable equity.
type Symbol struct {
	Symbol   string
	Name     string
	Tradable bool
}
