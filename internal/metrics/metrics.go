package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screener_cache_hits_total",
		Help: "Bar requests served from the file cache",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screener_cache_misses_total",
		Help: "Bar requests that required a remote fetch",
	})

	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screener_pages_fetched_total",
		Help: "Bar pages retrieved from the data API",
	})

	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screener_fetch_failures_total",
		Help: "Failed remote fetches by kind",
	}, []string{"kind"})

	SymbolsEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screener_symbols_evaluated_total",
		Help: "Symbols with enough history to evaluate the rule",
	})

	Signals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screener_signals_total",
		Help: "Symbols that matched the rule",
	})
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
