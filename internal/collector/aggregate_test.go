package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/config"
	"StockScreener/internal/model"
)

func defaultPartition(t *testing.T) *Partition {
	t.Helper()
	p, err := NewPartition("America/New_York", []config.Session{
		{Start: "09:30", End: "13:30"},
		{Start: "13:30", End: "16:00"},
	})
	require.NoError(t, err)
	return p
}

func halfHourBars(open time.Time, n int) model.BarSeries {
	bars := make(model.BarSeries, n)
	for i := range bars {
		p := 100 + float64(i)
		trades := int64(i + 1)
		vwap := p
		bars[i] = model.Bar{
			Time:       open.Add(time.Duration(i) * 30 * time.Minute).UTC(),
			Open:       p,
			High:       p + 1,
			Low:        p - 1,
			Close:      p + 0.5,
			Volume:     int64(100 * (i + 1)),
			TradeCount: &trades,
			VWAP:       &vwap,
		}
	}
	return bars
}

func TestAggregate_TwoSessions(t *testing.T) {
	p := defaultPartition(t)
	ny := p.Location
	open := time.Date(2024, 3, 5, 9, 30, 0, 0, ny)

	out := Aggregate(halfHourBars(open, 13), p)
	require.Len(t, out, 2)

	morning := out[0]
	assert.True(t, morning.Time.Equal(time.Date(2024, 3, 5, 9, 30, 0, 0, ny)))
	assert.Equal(t, ny, morning.Time.Location())
	assert.Equal(t, 100.0, morning.Open)
	assert.Equal(t, 107.5, morning.Close)
	assert.Equal(t, 108.0, morning.High)
	assert.Equal(t, 99.0, morning.Low)
	assert.Equal(t, int64(3600), morning.Volume)
	require.NotNil(t, morning.TradeCount)
	assert.Equal(t, int64(36), *morning.TradeCount)
	require.NotNil(t, morning.VWAP)
	assert.InDelta(t, 100+168.0/36, *morning.VWAP, 1e-9)

	afternoon := out[1]
	assert.True(t, afternoon.Time.Equal(time.Date(2024, 3, 5, 13, 30, 0, 0, ny)))
	assert.Equal(t, 108.0, afternoon.Open)
	assert.Equal(t, 112.5, afternoon.Close)
	assert.Equal(t, 113.0, afternoon.High)
	assert.Equal(t, 107.0, afternoon.Low)
	assert.Equal(t, int64(5500), afternoon.Volume)
	assert.Equal(t, int64(55), *afternoon.TradeCount)
}

func TestAggregate_DropsOutOfSessionBars(t *testing.T) {
	p := defaultPartition(t)
	ny := p.Location

	bars := halfHourBars(time.Date(2024, 3, 5, 8, 45, 0, 0, ny), 1)
	bars = append(bars, halfHourBars(time.Date(2024, 3, 5, 9, 30, 0, 0, ny), 2)...)
	bars = append(bars, halfHourBars(time.Date(2024, 3, 5, 16, 0, 0, 0, ny), 1)...)

	out := Aggregate(bars, p)
	require.Len(t, out, 1)
	assert.Equal(t, int64(300), out[0].Volume)
	assert.Equal(t, 100.0, out[0].Open)
	assert.Equal(t, 101.5, out[0].Close)
}

func TestAggregate_NewDayStartsNewSegment(t *testing.T) {
	p := defaultPartition(t)
	ny := p.Location

	bars := halfHourBars(time.Date(2024, 3, 5, 13, 0, 0, 0, ny), 1)
	bars = append(bars, halfHourBars(time.Date(2024, 3, 6, 9, 30, 0, 0, ny), 1)...)
	bars = append(bars, halfHourBars(time.Date(2024, 3, 6, 10, 0, 0, 0, ny), 1)...)

	out := Aggregate(bars, p)
	require.Len(t, out, 2)
	assert.True(t, out[0].Time.Equal(time.Date(2024, 3, 5, 9, 30, 0, 0, ny)))
	assert.True(t, out[1].Time.Equal(time.Date(2024, 3, 6, 9, 30, 0, 0, ny)))
	assert.Equal(t, int64(200), out[1].Volume)
}

func TestAggregate_AcrossDSTChange(t *testing.T) {
	p := defaultPartition(t)
	ny := p.Location

	// March 8 is EST, March 11 is EDT; UTC offsets differ but local sessions do not.
	bars := halfHourBars(time.Date(2024, 3, 8, 15, 30, 0, 0, ny), 1)
	bars = append(bars, halfHourBars(time.Date(2024, 3, 11, 15, 30, 0, 0, ny), 1)...)

	out := Aggregate(bars, p)
	require.Len(t, out, 2)
	assert.Equal(t, 13, out[0].Time.Hour())
	assert.Equal(t, 13, out[1].Time.Hour())
	assert.Equal(t, 30, out[1].Time.Minute())
}

func TestAggregate_OptionalFieldsAbsent(t *testing.T) {
	p := defaultPartition(t)
	open := time.Date(2024, 3, 5, 9, 30, 0, 0, p.Location)
	bars := model.BarSeries{
		{Time: open, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Time: open.Add(30 * time.Minute), Open: 1.5, High: 3, Low: 1, Close: 2, Volume: 20},
	}

	out := Aggregate(bars, p)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].TradeCount)
	assert.Nil(t, out[0].VWAP)
	assert.Equal(t, 3.0, out[0].High)
	assert.Equal(t, 0.5, out[0].Low)
}

func TestAggregate_Empty(t *testing.T) {
	out := Aggregate(nil, defaultPartition(t))
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestNewPartition_Errors(t *testing.T) {
	_, err := NewPartition("Mars/Olympus", nil)
	assert.Error(t, err)

	_, err = NewPartition("America/New_York", []config.Session{{Start: "9h", End: "10:00"}})
	assert.Error(t, err)
}
