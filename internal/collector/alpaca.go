package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"StockScreener/internal/cache"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
)

// AlpacaBarFetcher retrieves historical bars from the Alpaca v2 data API,
// page by page, with a file cache in front.
type AlpacaBarFetcher struct {
	DataURL   string
	APIKey    string
	APISecret string
	Client    *http.Client

	Cache    *cache.Store
	CacheTTL time.Duration

	// MinInterval is the minimum gap between the starts of two page requests
	// of one fetch. Zero disables throttling.
	MinInterval time.Duration

	// Partition, when set, collapses fetched bars into session bars before caching.
	Partition *Partition

	// Location is the exchange timezone used for the default date range.
	Location       *time.Location
	LookbackMonths int
	Now            func() time.Time
}

// NewAlpacaBarFetcher creates a fetcher with optional proxy support.
func NewAlpacaBarFetcher(dataURL, apiKey, apiSecret, proxyURL string) *AlpacaBarFetcher {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &AlpacaBarFetcher{
		DataURL:   dataURL,
		APIKey:    apiKey,
		APISecret: apiSecret,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Location:       loc,
		LookbackMonths: 3,
		Now:            time.Now,
	}
}

// alpacaBarsPage is one page of the /v2/stocks/{symbol}/bars response.
type alpacaBarsPage struct {
	Bars          []model.Bar `json:"bars"`
	Symbol        string      `json:"symbol"`
	NextPageToken *string     `json:"next_page_token"`
}

// Fetch returns the complete series for req. Any failure yields an empty
// series with Err set; partial pages are never returned.
func (f *AlpacaBarFetcher) Fetch(ctx context.Context, req BarRequest) Result {
	logger := log.WithField("symbol", req.Symbol)
	key := cache.Key(req.Symbol, req.Timeframe, req.Limit, req.Adjustment, req.Feed)

	if f.Cache != nil && f.Cache.IsValid(key, f.CacheTTL) {
		if bars, ok := f.Cache.Get(key); ok {
			metrics.CacheHits.Inc()
			logger.Debugf("cache hit: %d bars", len(bars))
			return Result{Bars: bars, Source: SourceCache}
		}
	}
	metrics.CacheMisses.Inc()

	bars, err := f.fetchAll(ctx, req)
	if err != nil {
		logger.WithError(err).Errorf("error fetching bars for %s", req.Symbol)
		return Result{Bars: model.BarSeries{}, Source: SourceRemote, Err: err}
	}

	if f.Partition != nil {
		bars = Aggregate(bars, f.Partition)
	}

	if f.Cache != nil {
		if err := f.Cache.Put(key, bars); err != nil {
			logger.WithError(err).Warn("write bar cache")
		}
	}
	return Result{Bars: bars, Source: SourceRemote}
}

func (f *AlpacaBarFetcher) fetchAll(ctx context.Context, req BarRequest) (model.BarSeries, error) {
	dr := f.dateRange(req)

	limit := rate.Inf
	if f.MinInterval > 0 {
		limit = rate.Every(f.MinInterval)
	}
	limiter := rate.NewLimiter(limit, 1)

	all := model.BarSeries{}
	token := ""
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("throttle: %w", err)
		}
		page, err := f.fetchPage(ctx, req, dr, token)
		if err != nil {
			return nil, err
		}
		metrics.PagesFetched.Inc()
		all = append(all, page.Bars...)

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			return all, nil
		}
		token = *page.NextPageToken
	}
}

func (f *AlpacaBarFetcher) fetchPage(ctx context.Context, req BarRequest, dr DateRange, token string) (*alpacaBarsPage, error) {
	params := url.Values{}
	params.Set("timeframe", req.Timeframe)
	params.Set("start", dr.Start.Format("2006-01-02"))
	params.Set("end", dr.End.Format("2006-01-02"))
	params.Set("limit", strconv.Itoa(req.Limit))
	params.Set("adjustment", req.Adjustment)
	params.Set("feed", req.Feed)
	params.Set("sort", "asc")
	if token != "" {
		params.Set("page_token", token)
	}
	endpoint := fmt.Sprintf("%s/v2/stocks/%s/bars?%s", f.DataURL, url.PathEscape(req.Symbol), params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("APCA-API-KEY-ID", f.APIKey)
	httpReq.Header.Set("APCA-API-SECRET-KEY", f.APISecret)

	resp, err := f.Client.Do(httpReq)
	if err != nil {
		metrics.FetchFailures.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		metrics.FetchFailures.WithLabelValues("status").Inc()
		log.WithField("symbol", req.Symbol).Errorf("errtext: %s", string(body))
		return nil, fmt.Errorf("fetch bars: status %d", resp.StatusCode)
	}

	var page alpacaBarsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		metrics.FetchFailures.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	return &page, nil
}

func (f *AlpacaBarFetcher) dateRange(req BarRequest) DateRange {
	if req.Range != nil {
		return *req.Range
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	months := f.LookbackMonths
	if months <= 0 {
		months = 3
	}
	return DefaultDateRange(now(), loc, months)
}
