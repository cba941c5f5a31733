package collector

import (
	"context"
	"time"

	"StockScreener/internal/model"
)

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DefaultDateRange spans the given number of months back through yesterday on
// the exchange calendar.
func DefaultDateRange(now time.Time, loc *time.Location, months int) DateRange {
	local := now.In(loc)
	return DateRange{
		Start: local.AddDate(0, -months, 0),
		End:   local.AddDate(0, 0, -1),
	}
}

// BarRequest identifies one historical bar series.
type BarRequest struct {
	Symbol     string
	Timeframe  string
	Limit      int
	Adjustment string
	Feed       string
	Range      *DateRange // nil means DefaultDateRange
}

// Source tells where a Result came from.
type Source string

const (
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
)

// Result is the outcome of a bar fetch: either bars or the reason there are none.
type Result struct {
	Bars   model.BarSeries
	Source Source
	Err    error
}

// Failed reports whether the fetch produced no usable series.
func (r Result) Failed() bool { return r.Err != nil }

// BarFetcher retrieves a complete bar series for one request.
type BarFetcher interface {
	Fetch(ctx context.Context, req BarRequest) Result
}

// AssetLister returns the tradable equity universe.
type AssetLister interface {
	ListAssets(ctx context.Context) ([]model.Symbol, error)
}
