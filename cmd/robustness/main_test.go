package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnglab/param-robustness/pkg/config"
)

func stringPtr(s string) *string { return &s }
func intPtr(v int) *int          { return &v }
func int64Ptr(v int64) *int64    { return &v }
func boolPtr(v bool) *bool       { return &v }

// testFlags mirrors the registered flag defaults without touching the global
// flag set, which can only be registered once per process.
func testFlags() *RobustnessFlags {
	return &RobustnessFlags{
		ConfigFile:  stringPtr(""),
		Tickers:     stringPtr(""),
		Source:      stringPtr(""),
		DataRoot:    stringPtr(""),
		Exchange:    stringPtr(""),
		Interval:    stringPtr(""),
		Period:      stringPtr(""),
		Simulations: intPtr(0),
		Workers:     intPtr(0),
		Seed:        int64Ptr(-1),
		OutputDir:   stringPtr(""),
		Formats:     stringPtr(""),
		ConsoleOnly: boolPtr(false),
		MetricsAddr: stringPtr(""),
		LogLevel:    stringPtr("info"),
		EnvFile:     stringPtr(".env"),
		ShowVersion: boolPtr(false),
	}
}

func testConfig() *config.RobustnessConfig {
	cfg := config.NewDefaultRobustnessConfig()
	cfg.Strategies = config.DefaultStrategies([]string{"BTCUSDT"})
	return cfg
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, SplitList("BTCUSDT, ETHUSDT"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitList("a,,b, c,"))
	assert.Nil(t, SplitList(""))
}

func TestValidateRobustnessFlags(t *testing.T) {
	assert.NoError(t, ValidateRobustnessFlags(testFlags()))

	flags := testFlags()
	flags.Source = stringPtr("kraken")
	assert.Error(t, ValidateRobustnessFlags(flags))

	flags = testFlags()
	flags.Period = stringPtr("yesterday")
	assert.Error(t, ValidateRobustnessFlags(flags))

	flags = testFlags()
	flags.Formats = stringPtr("csv")
	flags.ConsoleOnly = boolPtr(true)
	assert.Error(t, ValidateRobustnessFlags(flags))
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := testConfig()
	flags := testFlags()
	flags.Source = stringPtr("bybit")
	flags.ConsoleOnly = boolPtr(true)

	out, err := applyFlagOverrides(cfg, flags)
	require.NoError(t, err)
	assert.Equal(t, config.SourceBybit, out.Data.Source)
	assert.Equal(t, []string{config.FormatConsole}, out.Output.Formats)
}

func TestApplyFlagOverrides_RejectsUnknownFormat(t *testing.T) {
	flags := testFlags()
	flags.Formats = stringPtr("pdf")

	_, err := applyFlagOverrides(testConfig(), flags)
	assert.Error(t, err)
}

func TestBuildSeriesSource(t *testing.T) {
	source, err := buildSeriesSource(testConfig())
	require.NoError(t, err)
	assert.NotNil(t, source)

	cfg := testConfig()
	cfg.Data.Source = "unknown"
	_, err = buildSeriesSource(cfg)
	assert.Error(t, err)
}
