package config

import (
	"fmt"
	"strings"

	"github.com/rnglab/param-robustness/internal/backtest"
	"github.com/rnglab/param-robustness/internal/robustness"
)

// Default run settings
const (
	DefaultDataSource = SourceCSV
	DefaultDataDir    = "data"
	DefaultExchange   = "bybit"
	DefaultCategory   = "linear"
	DefaultInterval   = "1h"
	DefaultKlineLimit = 1000

	DefaultOutputDir = "results"

	DefaultInitialBalance = 10000.0
	DefaultCommission     = 0.001
	MaxCommission         = 1.0

	DefaultShortWindow = 5
	DefaultLongWindow  = 20
)

// Data source names accepted in DataConfig.Source
const (
	SourceCSV   = "csv"
	SourceBybit = "bybit"
)

// Output format names accepted in OutputConfig.Formats
const (
	FormatConsole = "console"
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatExcel   = "excel"
)

// StrategyConfig describes one portfolio entry: the ticker to analyze and the
// base crossover windows the run perturbs.
type StrategyConfig struct {
	Ticker      string `json:"ticker"`
	ShortWindow int    `json:"short_window"`
	LongWindow  int    `json:"long_window"`
}

// DataConfig selects where price history comes from.
type DataConfig struct {
	Source   string `json:"source"`
	DataDir  string `json:"data_dir"`
	Exchange string `json:"exchange"`
	Category string `json:"category"`
	Interval string `json:"interval"`
	Limit    int    `json:"limit"` // bars per exchange fetch
	UseCache bool   `json:"use_cache"`
}

// BacktestConfig holds the execution settings shared by every trial.
type BacktestConfig struct {
	InitialBalance float64 `json:"initial_balance"`
	Commission     float64 `json:"commission"`
}

// OutputConfig selects report destinations.
type OutputConfig struct {
	Directory string   `json:"directory"`
	Formats   []string `json:"formats"`
}

// RobustnessConfig is the complete configuration for one portfolio
// robustness run.
type RobustnessConfig struct {
	Analysis   robustness.Config `json:"analysis"`
	Backtest   BacktestConfig    `json:"backtest"`
	Data       DataConfig        `json:"data"`
	Output     OutputConfig      `json:"output"`
	Strategies []StrategyConfig  `json:"strategies"`
}

// NewDefaultRobustnessConfig returns a configuration with defaults for every
// section. Strategies start empty; entries come from the config file or the
// command line.
func NewDefaultRobustnessConfig() *RobustnessConfig {
	return &RobustnessConfig{
		Analysis: robustness.DefaultConfig(),
		Backtest: BacktestConfig{
			InitialBalance: DefaultInitialBalance,
			Commission:     DefaultCommission,
		},
		Data: DataConfig{
			Source:   DefaultDataSource,
			DataDir:  DefaultDataDir,
			Exchange: DefaultExchange,
			Category: DefaultCategory,
			Interval: DefaultInterval,
			Limit:    DefaultKlineLimit,
			UseCache: true,
		},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
			Formats:   []string{FormatConsole},
		},
	}
}

// Validate checks every section of the configuration.
func (c *RobustnessConfig) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return err
	}

	if c.Backtest.InitialBalance <= 0 {
		return fmt.Errorf("initial balance must be positive, got: %.2f", c.Backtest.InitialBalance)
	}
	if c.Backtest.Commission < 0 || c.Backtest.Commission > MaxCommission {
		return fmt.Errorf("commission must be between 0 and %.2f, got: %.4f", MaxCommission, c.Backtest.Commission)
	}

	switch c.Data.Source {
	case SourceCSV:
		if c.Data.DataDir == "" {
			return fmt.Errorf("data_dir is required for the %s source", SourceCSV)
		}
	case SourceBybit:
		if c.Data.Interval == "" {
			return fmt.Errorf("interval is required for the %s source", SourceBybit)
		}
		if c.Data.Limit <= 0 {
			return fmt.Errorf("limit must be positive for the %s source, got: %d", SourceBybit, c.Data.Limit)
		}
	default:
		return fmt.Errorf("unknown data source %q (expected %s or %s)", c.Data.Source, SourceCSV, SourceBybit)
	}

	if len(c.Output.Formats) == 0 {
		return fmt.Errorf("at least one output format is required")
	}
	for _, format := range c.Output.Formats {
		switch strings.ToLower(format) {
		case FormatConsole:
		case FormatCSV, FormatJSON, FormatExcel:
			if c.Output.Directory == "" {
				return fmt.Errorf("output directory is required for the %s format", format)
			}
		default:
			return fmt.Errorf("unknown output format %q", format)
		}
	}

	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}
	for i, s := range c.Strategies {
		if s.Ticker == "" {
			return fmt.Errorf("strategy %d: ticker must not be empty", i)
		}
		if s.ShortWindow < 1 {
			return fmt.Errorf("strategy %s: short window must be at least 1, got: %d", s.Ticker, s.ShortWindow)
		}
		if s.LongWindow <= s.ShortWindow {
			return fmt.Errorf("strategy %s: long window must exceed short window, got: %d/%d", s.Ticker, s.ShortWindow, s.LongWindow)
		}
	}

	return nil
}

// HasFormat reports whether the named output format is enabled.
func (c *RobustnessConfig) HasFormat(format string) bool {
	for _, f := range c.Output.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// Descriptors converts the configured strategies into the analysis units the
// portfolio manager consumes.
func (c *RobustnessConfig) Descriptors() []robustness.StrategyDescriptor {
	descriptors := make([]robustness.StrategyDescriptor, 0, len(c.Strategies))
	for _, s := range c.Strategies {
		descriptors = append(descriptors, robustness.StrategyDescriptor{
			Ticker:         s.Ticker,
			BaseParameters: backtest.CrossoverParameters(s.ShortWindow, s.LongWindow),
		})
	}
	return descriptors
}
