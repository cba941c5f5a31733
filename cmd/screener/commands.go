package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"StockScreener/internal/cache"
	"StockScreener/internal/calculator"
	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/metrics"
	"StockScreener/internal/notifier"
	"StockScreener/internal/report"
	"StockScreener/internal/scheduler"
	"StockScreener/internal/screener"
	"StockScreener/internal/strategy"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "screen the universe once and write the reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner, err := newRunner(cfg)
		if err != nil {
			return err
		}

		out, err := runner.Run(ctx)
		tn := newNotifier(cfg)
		if err != nil {
			if tn != nil {
				notify(ctx, tn, notifier.FormatScanError(err))
			}
			return err
		}
		if tn != nil {
			notify(ctx, tn, notifier.FormatScanReport(out))
		}
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "run scans on a cron schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if expr, _ := cmd.Flags().GetString("cron"); expr != "" {
			cfg.Schedule.Cron = expr
		}
		runOnStart, _ := cmd.Flags().GetBool("run-on-start")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner, err := newRunner(cfg)
		if err != nil {
			return err
		}
		// a scheduled process has no terminal to draw on
		runner.Progress = nil

		sched := scheduler.NewScheduler(ctx, runner)
		if err := sched.Register(cfg.Schedule.Cron); err != nil {
			return err
		}

		if tn := newNotifier(cfg); tn != nil {
			sched.OnOutcome = func(out *screener.Outcome) {
				notify(ctx, tn, notifier.FormatScanReport(out))
			}
			sched.OnError = func(err error) {
				notify(ctx, tn, notifier.FormatScanError(err))
			}
			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Info("telegram polling started")
		}

		if cfg.Metrics.Listen != "" {
			go func() {
				if err := metrics.Serve(ctx, cfg.Metrics.Listen); err != nil {
					log.WithError(err).Error("metrics server")
				}
			}()
		}

		sched.Start()
		defer sched.Stop()

		if runOnStart {
			go func() {
				if _, err := sched.RunNow(); err != nil {
					log.WithError(err).Error("initial scan failed")
				}
			}()
		}

		log.Info("screener is running, press Ctrl+C to stop")
		<-ctx.Done()
		log.Info("shutdown signal received, stopping...")
		return nil
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump SYMBOL",
	Short: "write a symbol's bars and indicators to {output}/{SYMBOL}.xlsx",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		col, err := newCollector(cfg)
		if err != nil {
			return err
		}
		symbol := strings.ToUpper(strings.TrimSpace(args[0]))

		snap, err := col.Collect(ctx, symbol)
		if err != nil {
			return err
		}

		header, rows := dumpRows(snap)
		path, err := report.NewExcelSink(cfg.Report.OutputDir).Dump(symbol, header, rows)
		if err != nil {
			return err
		}
		log.Infof("dumped %d bars of %s (%s) to %s", len(snap.Bars), symbol, snap.Source, path)
		return nil
	},
}

func init() {
	scheduleCmd.Flags().String("cron", "", "six-field cron expression (default from config)")
	scheduleCmd.Flags().Bool("run-on-start", false, "run a scan immediately")
}

// dumpRows lays out bars with their right-aligned indicators; cells before
// an indicator is defined are left empty.
func dumpRows(snap *collector.Snapshot) ([]string, [][]any) {
	header := []string{"Time", "Open", "High", "Low", "Close", "Volume", "EMA", "MACD", "Signal", "Histogram"}

	n := len(snap.Bars)
	emaOffset := n - len(snap.Indicators.EMA)
	macdOffset := n - len(snap.Indicators.MACD)

	rows := make([][]any, 0, n)
	for i, b := range snap.Bars {
		row := []any{b.Time.Format(time.RFC3339), b.Open, b.High, b.Low, b.Close, b.Volume, "", "", "", ""}
		if i >= emaOffset {
			row[6] = snap.Indicators.EMA[i-emaOffset]
		}
		if i >= macdOffset {
			p := snap.Indicators.MACD[i-macdOffset]
			row[7], row[8], row[9] = p.MACD, p.Signal, p.Histogram
		}
		rows = append(rows, row)
	}
	return header, rows
}

func newCollector(cfg *config.Config) (*collector.Collector, error) {
	fetcher := collector.NewAlpacaBarFetcher(cfg.Alpaca.DataURL, cfg.Alpaca.APIKey, cfg.Alpaca.SecretKey, cfg.Proxy)
	fetcher.Cache = cache.NewStore(cfg.Cache.Dir)
	fetcher.CacheTTL = cfg.CacheTTL()
	fetcher.MinInterval = cfg.MinInterval()
	fetcher.LookbackMonths = cfg.Bars.LookbackMonth

	timeframe := cfg.Bars.Timeframe
	if cfg.Aggregation.Enabled {
		p, err := collector.NewPartition(cfg.Aggregation.Timezone, cfg.Aggregation.Sessions)
		if err != nil {
			return nil, fmt.Errorf("aggregation: %w", err)
		}
		fetcher.Partition = p
		fetcher.Location = p.Location
		timeframe = cfg.Aggregation.SourceTimeframe
	}

	template := collector.BarRequest{
		Timeframe:  timeframe,
		Limit:      cfg.Bars.Limit,
		Adjustment: cfg.Bars.Adjustment,
		Feed:       cfg.Bars.Feed,
	}
	params := calculator.Params{
		EMAPeriod:    cfg.Indicators.EMAPeriod,
		FastPeriod:   cfg.Indicators.FastPeriod,
		SlowPeriod:   cfg.Indicators.SlowPeriod,
		SignalPeriod: cfg.Indicators.SignalPeriod,
	}
	return collector.NewCollector(fetcher, template, params), nil
}

func newRunner(cfg *config.Config) (*screener.Runner, error) {
	col, err := newCollector(cfg)
	if err != nil {
		return nil, err
	}
	return &screener.Runner{
		Lister: collector.NewAlpacaAssetLister(cfg.Alpaca.BaseURL, cfg.Alpaca.APIKey, cfg.Alpaca.SecretKey,
			cfg.Universe.Status, cfg.Universe.Exchange, cfg.Universe.Class),
		Collector: col,
		Rule:      strategy.NewRule(cfg.Rule.MinBars, cfg.Rule.PremiumPct),
		Sink:      report.NewExcelSink(cfg.Report.OutputDir),
		Symbols:   cfg.Universe.Symbols,
		Debug:     cfg.Debug,
		Progress:  os.Stderr,
		Console:   os.Stdout,
	}, nil
}

func newNotifier(cfg *config.Config) *notifier.TelegramNotifier {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
		return nil
	}
	return notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
}

func notify(ctx context.Context, tn *notifier.TelegramNotifier, text string) {
	if err := tn.SendWithRetry(ctx, text, 3); err != nil {
		log.WithError(err).Error("send notification")
	}
}
