package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"StockScreener/internal/model"
)

// AlpacaAssetLister lists assets through the Alpaca trading API.
type AlpacaAssetLister struct {
	client   *alpaca.Client
	status   string
	exchange string
	class    string
}

// NewAlpacaAssetLister creates a lister for assets matching status, exchange
// and asset class (e.g. "active", "NYSE", "us_equity").
func NewAlpacaAssetLister(baseURL, apiKey, apiSecret, status, exchange, class string) *AlpacaAssetLister {
	return &AlpacaAssetLister{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		status:   status,
		exchange: exchange,
		class:    class,
	}
}

// ListAssets returns the tradable, single-leg symbols of the configured universe.
func (l *AlpacaAssetLister) ListAssets(ctx context.Context) ([]model.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	assets, err := l.client.GetAssets(alpaca.GetAssetsRequest{
		Status:     l.status,
		Exchange:   l.exchange,
		AssetClass: l.class,
	})
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	symbols := make([]model.Symbol, 0, len(assets))
	for _, a := range assets {
		symbols = append(symbols, model.Symbol{Symbol: a.Symbol, Name: a.Name, Tradable: a.Tradable})
	}
	return FilterTradable(symbols), nil
}

// FilterTradable keeps tradable symbols that are not multi-leg ("/") identifiers.
func FilterTradable(symbols []model.Symbol) []model.Symbol {
	out := make([]model.Symbol, 0, len(symbols))
	for _, s := range symbols {
		if !s.Tradable || strings.Contains(s.Symbol, "/") {
			continue
		}
		out = append(out, s)
	}
	return out
}
