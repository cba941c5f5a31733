package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

func TestCollector_Collect(t *testing.T) {
	bars := makeBars(time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), 4*time.Hour, 250, 50)
	mock := &MockFetcher{Series: map[string]model.BarSeries{"ACME": bars}}
	template := BarRequest{Timeframe: "4H", Limit: 1000, Adjustment: "raw", Feed: "sip"}

	c := NewCollector(mock, template, calculator.DefaultParams)
	snap, err := c.Collect(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Len(t, snap.Bars, 250)
	assert.Len(t, snap.Indicators.EMA, 51)
	assert.Len(t, snap.Indicators.MACD, 250-26-9+2)
	assert.Equal(t, SourceRemote, snap.Source)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "ACME", reqs[0].Symbol)
	assert.Equal(t, "4H", reqs[0].Timeframe)
	assert.Empty(t, c.Template.Symbol, "template must not be mutated")
}

func TestCollector_FetchFailure(t *testing.T) {
	boom := errors.New("boom")
	mock := &MockFetcher{Errs: map[string]error{"BAD": boom}}
	c := NewCollector(mock, BarRequest{}, calculator.DefaultParams)

	snap, err := c.Collect(context.Background(), "BAD")
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, boom)

	_, err = c.Collect(context.Background(), "UNKNOWN")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestMockLister(t *testing.T) {
	l := &MockLister{Symbols: []model.Symbol{{Symbol: "A", Tradable: true}, {Symbol: "B/C", Tradable: true}}}
	symbols, err := l.ListAssets(context.Background())
	require.NoError(t, err)
	assert.Len(t, symbols, 1)

	l.Err = errors.New("down")
	_, err = l.ListAssets(context.Background())
	assert.Error(t, err)
}
