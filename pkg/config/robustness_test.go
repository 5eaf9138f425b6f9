package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnglab/param-robustness/internal/backtest"
)

func validConfig() *RobustnessConfig {
	cfg := NewDefaultRobustnessConfig()
	cfg.Strategies = []StrategyConfig{
		{Ticker: "BTCUSDT", ShortWindow: 5, LongWindow: 20},
		{Ticker: "ETHUSDT", ShortWindow: 10, LongWindow: 30},
	}
	return cfg
}

func TestNewDefaultRobustnessConfig(t *testing.T) {
	cfg := NewDefaultRobustnessConfig()

	assert.Equal(t, SourceCSV, cfg.Data.Source)
	assert.Equal(t, DefaultDataDir, cfg.Data.DataDir)
	assert.Equal(t, DefaultInterval, cfg.Data.Interval)
	assert.True(t, cfg.Data.UseCache)
	assert.Equal(t, DefaultInitialBalance, cfg.Backtest.InitialBalance)
	assert.Equal(t, DefaultCommission, cfg.Backtest.Commission)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Directory)
	assert.Equal(t, []string{FormatConsole}, cfg.Output.Formats)
	assert.Empty(t, cfg.Strategies)
}

func TestValidate_AcceptsValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_RejectsBadSections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RobustnessConfig)
		message string
	}{
		{
			name:    "bad analysis section",
			mutate:  func(c *RobustnessConfig) { c.Analysis.NumSimulations = 0 },
			message: "num_simulations",
		},
		{
			name:    "non-positive balance",
			mutate:  func(c *RobustnessConfig) { c.Backtest.InitialBalance = 0 },
			message: "initial balance",
		},
		{
			name:    "commission above max",
			mutate:  func(c *RobustnessConfig) { c.Backtest.Commission = 1.5 },
			message: "commission",
		},
		{
			name:    "unknown data source",
			mutate:  func(c *RobustnessConfig) { c.Data.Source = "ftp" },
			message: "unknown data source",
		},
		{
			name: "csv source without data dir",
			mutate: func(c *RobustnessConfig) {
				c.Data.Source = SourceCSV
				c.Data.DataDir = ""
			},
			message: "data_dir",
		},
		{
			name: "bybit source without limit",
			mutate: func(c *RobustnessConfig) {
				c.Data.Source = SourceBybit
				c.Data.Limit = 0
			},
			message: "limit",
		},
		{
			name:    "no output formats",
			mutate:  func(c *RobustnessConfig) { c.Output.Formats = nil },
			message: "output format",
		},
		{
			name:    "unknown output format",
			mutate:  func(c *RobustnessConfig) { c.Output.Formats = []string{"pdf"} },
			message: "unknown output format",
		},
		{
			name: "file format without directory",
			mutate: func(c *RobustnessConfig) {
				c.Output.Formats = []string{FormatCSV}
				c.Output.Directory = ""
			},
			message: "output directory",
		},
		{
			name:    "no strategies",
			mutate:  func(c *RobustnessConfig) { c.Strategies = nil },
			message: "strategy",
		},
		{
			name: "empty ticker",
			mutate: func(c *RobustnessConfig) {
				c.Strategies[0].Ticker = ""
			},
			message: "ticker",
		},
		{
			name: "long window not above short",
			mutate: func(c *RobustnessConfig) {
				c.Strategies[0].ShortWindow = 20
				c.Strategies[0].LongWindow = 20
			},
			message: "long window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestHasFormat_IgnoresCase(t *testing.T) {
	cfg := validConfig()
	cfg.Output.Formats = []string{"Console", "EXCEL"}

	assert.True(t, cfg.HasFormat(FormatConsole))
	assert.True(t, cfg.HasFormat(FormatExcel))
	assert.False(t, cfg.HasFormat(FormatJSON))
}

func TestDescriptors_BuildsCrossoverParameters(t *testing.T) {
	cfg := validConfig()

	descriptors := cfg.Descriptors()
	require.Len(t, descriptors, 2)

	assert.Equal(t, "BTCUSDT", descriptors[0].Ticker)
	short, ok := descriptors[0].BaseParameters.Int(backtest.ParamShortWindow)
	require.True(t, ok)
	assert.Equal(t, 5, short)

	long, ok := descriptors[1].BaseParameters.Int(backtest.ParamLongWindow)
	require.True(t, ok)
	assert.Equal(t, 30, long)
}
