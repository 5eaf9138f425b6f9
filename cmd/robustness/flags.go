package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/rnglab/param-robustness/pkg/config"
	datamanager "github.com/rnglab/param-robustness/pkg/data"
)

// RobustnessFlags holds all command line flags for the robustness command
type RobustnessFlags struct {
	// Configuration
	ConfigFile *string
	Tickers    *string

	// Data selection
	Source   *string
	DataRoot *string
	Exchange *string
	Interval *string
	Period   *string

	// Analysis options
	Simulations *int
	Workers     *int
	Seed        *int64

	// Output options
	OutputDir   *string
	Formats     *string
	ConsoleOnly *bool

	// Observability
	MetricsAddr *string
	LogLevel    *string
	LogDir      *string

	EnvFile *string

	// Help and version
	ShowVersion *bool
}

// NewRobustnessFlags creates and registers all command line flags
func NewRobustnessFlags() *RobustnessFlags {
	return &RobustnessFlags{
		// Configuration
		ConfigFile: flag.String("config", "", "Path to robustness configuration file"),
		Tickers:    flag.String("tickers", "", "Comma-separated tickers to analyze (e.g. BTCUSDT,ETHUSDT)"),

		// Data selection
		Source:   flag.String("source", "", "Data source (csv, bybit); overrides the config file"),
		DataRoot: flag.String("data-root", "", "Root directory of historical CSV data"),
		Exchange: flag.String("exchange", "", "Exchange directory under the data root (bybit, binance)"),
		Interval: flag.String("interval", "", "Kline interval (5m, 15m, 1h, 4h, 1d)"),
		Period:   flag.String("period", "", "Trailing data window (7d, 30d, 180d, 365d)"),

		// Analysis options
		Simulations: flag.Int("simulations", 0, "Bootstrap trials per ticker (0 keeps the configured value)"),
		Workers:     flag.Int("workers", 0, "Concurrent ticker analyses (0 keeps the configured value)"),
		Seed:        flag.Int64("seed", -1, "Base random seed (negative keeps the configured value)"),

		// Output options
		OutputDir:   flag.String("output", "", "Directory for report artifacts"),
		Formats:     flag.String("formats", "", "Comma-separated report formats (console, csv, json, excel)"),
		ConsoleOnly: flag.Bool("console-only", false, "Print to console only, skip file artifacts"),

		// Observability
		MetricsAddr: flag.String("metrics-addr", "", "Listen address for Prometheus metrics (empty disables)"),
		LogLevel:    flag.String("log-level", "info", "Log level (debug, info, warn, error)"),
		LogDir:      flag.String("log-dir", "", "Directory for session log files (empty disables)"),

		EnvFile: flag.String("env", ".env", "Environment file with exchange credentials"),

		// Help and version
		ShowVersion: flag.Bool("version", false, "Show version and exit"),
	}
}

// ValidateRobustnessFlags validates flag values before configuration loading
func ValidateRobustnessFlags(flags *RobustnessFlags) error {
	if *flags.Source != "" {
		switch strings.ToLower(*flags.Source) {
		case config.SourceCSV, config.SourceBybit:
		default:
			return fmt.Errorf("unknown data source: %s (use csv or bybit)", *flags.Source)
		}
	}

	if *flags.Period != "" {
		if _, ok := datamanager.ParseTrailingPeriod(*flags.Period); !ok {
			return fmt.Errorf("invalid period format: %s (use 7d, 30d, 180d, 365d)", *flags.Period)
		}
	}

	if *flags.Formats != "" && *flags.ConsoleOnly {
		return fmt.Errorf("-formats and -console-only are mutually exclusive")
	}

	return nil
}

// SplitList splits a comma-separated flag value, dropping empty entries
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
