package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// MockFetcher returns fixed series per symbol for development and testing.
// Symbols without an entry fail with ErrNoData.
type MockFetcher struct {
	Series map[string]model.BarSeries
	Errs   map[string]error

	mu       sync.Mutex
	requests []BarRequest
}

// ErrNoData is returned by MockFetcher for unknown symbols.
var ErrNoData = errors.New("no data")

func (m *MockFetcher) Fetch(_ context.Context, req BarRequest) Result {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err, ok := m.Errs[req.Symbol]; ok {
		return Result{Bars: model.BarSeries{}, Source: SourceRemote, Err: err}
	}
	bars, ok := m.Series[req.Symbol]
	if !ok {
		return Result{Bars: model.BarSeries{}, Source: SourceRemote, Err: fmt.Errorf("%s: %w", req.Symbol, ErrNoData)}
	}
	return Result{Bars: bars, Source: SourceRemote}
}

// Requests returns the requests seen so far.
func (m *MockFetcher) Requests() []BarRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BarRequest(nil), m.requests...)
}

// MockLister returns a fixed universe.
type MockLister struct {
	Symbols []model.Symbol
	Err     error
}

func (m *MockLister) ListAssets(_ context.Context) ([]model.Symbol, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return FilterTradable(m.Symbols), nil
}

// Snapshot is a fetched series together with its indicators.
type Snapshot struct {
	Bars       model.BarSeries
	Indicators model.IndicatorSet
	Source     Source
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher  BarFetcher
	Template BarRequest
	Params   calculator.Params
}

// NewCollector creates a Collector that fetches template-shaped requests.
func NewCollector(fetcher BarFetcher, template BarRequest, params calculator.Params) *Collector {
	return &Collector{Fetcher: fetcher, Template: template, Params: params}
}

// Request returns the bar request for symbol.
func (c *Collector) Request(symbol string) BarRequest {
	req := c.Template
	req.Symbol = symbol
	return req
}

// Collect fetches the series for symbol and computes its indicators.
// A failed fetch is returned as an error; no indicators are computed.
func (c *Collector) Collect(ctx context.Context, symbol string) (*Snapshot, error) {
	res := c.Fetcher.Fetch(ctx, c.Request(symbol))
	if res.Failed() {
		return nil, fmt.Errorf("fetch bars for %s: %w", symbol, res.Err)
	}
	return &Snapshot{
		Bars:       res.Bars,
		Indicators: calculator.Compute(res.Bars.Closes(), c.Params),
		Source:     res.Source,
	}, nil
}
