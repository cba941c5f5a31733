package screener

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cheggaaa/pb/v3"
	log "github.com/sirupsen/logrus"

	"StockScreener/internal/collector"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/report"
	"StockScreener/internal/strategy"
)

// Outcome summarizes one pass over the universe.
type Outcome struct {
	Results []model.SignalResult
	Debug   []model.Diagnostic

	Scanned int // symbols attempted
	Failed  int // symbols whose fetch failed

	ResultsPath string
	DebugPath   string

	StartedAt  time.Time
	FinishedAt time.Time
}

// Runner screens every symbol of the universe sequentially.
type Runner struct {
	Lister    collector.AssetLister
	Collector *collector.Collector
	Rule      strategy.Rule
	Sink      report.Sink

	// Symbols, when non-empty, restricts the universe to these symbols.
	Symbols []string
	Debug   bool

	// Progress receives the progress bar; nil disables it.
	Progress io.Writer
	// Console receives the result table; nil disables it.
	Console io.Writer
}

// Universe returns the symbols to scan in listing order. A listing failure
// yields an empty universe.
func (r *Runner) Universe(ctx context.Context) []model.Symbol {
	logger := log.WithField("component", "screener")

	symbols, err := r.Lister.ListAssets(ctx)
	if err != nil {
		logger.WithError(err).Error("error fetching assets")
		return nil
	}
	if len(r.Symbols) == 0 {
		return symbols
	}
	return filterSymbols(symbols, r.Symbols)
}

func filterSymbols(listed []model.Symbol, wanted []string) []model.Symbol {
	want := make(map[string]bool, len(wanted))
	for _, s := range wanted {
		want[s] = false
	}

	out := make([]model.Symbol, 0, len(wanted))
	for _, s := range listed {
		if _, ok := want[s.Symbol]; ok {
			want[s.Symbol] = true
			out = append(out, s)
		}
	}
	for _, s := range wanted {
		if !want[s] {
			log.WithField("symbol", s).Warn("requested symbol is not in the tradable universe")
		}
	}
	return out
}

// Run fetches, evaluates and reports the whole universe. Per-symbol fetch
// failures are skipped; report failures are returned.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	logger := log.WithField("component", "screener")
	out := &Outcome{StartedAt: time.Now(), Results: []model.SignalResult{}, Debug: []model.Diagnostic{}}

	universe := r.Universe(ctx)
	logger.Infof("screening %d symbols", len(universe))

	var bar *pb.ProgressBar
	if r.Progress != nil {
		bar = pb.Full.New(len(universe)).SetWriter(r.Progress).Start()
	}

	for _, sym := range universe {
		if err := ctx.Err(); err != nil {
			if bar != nil {
				bar.Finish()
			}
			return out, fmt.Errorf("scan interrupted: %w", err)
		}
		out.Scanned++
		r.screen(ctx, sym, out)
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if err := r.report(out); err != nil {
		return out, err
	}
	out.FinishedAt = time.Now()
	logger.Infof("scan finished: %d scanned, %d failed, %d signals", out.Scanned, out.Failed, len(out.Results))
	return out, nil
}

func (r *Runner) screen(ctx context.Context, sym model.Symbol, out *Outcome) {
	logger := log.WithField("symbol", sym.Symbol)

	snap, err := r.Collector.Collect(ctx, sym.Symbol)
	if err != nil {
		out.Failed++
		logger.WithError(err).Warn("skipping symbol")
		return
	}

	result, diag := strategy.Evaluate(sym, snap.Bars, snap.Indicators, r.Rule)
	if diag == nil {
		logger.Debugf("not enough history: %d bars", len(snap.Bars))
		return
	}
	metrics.SymbolsEvaluated.Inc()
	out.Debug = append(out.Debug, *diag)

	if result != nil {
		metrics.Signals.Inc()
		logger.Infof("signal: %s: close %.2f, ema %.4f, macd %.4f, signal %.4f",
			result.Symbol, result.CurrentPrice, result.EMA200, result.MACD.MACD, result.MACD.Signal)
		out.Results = append(out.Results, *result)
	}
}

func (r *Runner) report(out *Outcome) error {
	path, err := r.Sink.WriteResults(out.Results)
	if err != nil {
		return fmt.Errorf("write results report: %w", err)
	}
	out.ResultsPath = path

	if r.Debug {
		path, err := r.Sink.WriteDebug(out.Debug)
		if err != nil {
			return fmt.Errorf("write debug report: %w", err)
		}
		out.DebugPath = path
	}

	if r.Console != nil {
		report.RenderTable(r.Console, out.Results)
	}
	return nil
}
