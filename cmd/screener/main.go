package main

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"

	"StockScreener/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "EMA/MACD stock screener for US equities",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = "configs/config.yaml"
			if v := os.Getenv("CONFIG_PATH"); v != "" {
				path = v
			}
		}

		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			loaded.Debug = true
		}
		if symbols, _ := cmd.Flags().GetString("symbols"); symbols != "" {
			loaded.Universe.Symbols = config.ParseSymbolList(symbols)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}

		cfg = loaded
		setupLogging(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default configs/config.yaml or $CONFIG_PATH)")
	rootCmd.PersistentFlags().Bool("debug", false, "debug logging and debug report")
	rootCmd.PersistentFlags().String("symbols", "", "comma-separated symbols to restrict the universe to")

	rootCmd.AddCommand(scanCmd, scheduleCmd, dumpCmd)
}

func setupLogging(cfg *config.Config) {
	if cfg.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&prefixed.TextFormatter{FullTimestamp: true})
	}

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if cfg.Log.File != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
		}))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("cannot execute command")
	}
}
