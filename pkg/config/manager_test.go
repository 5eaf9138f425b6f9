package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnglab/param-robustness/internal/robustness"
)

func TestLoadConfig_DefaultsWithTickers(t *testing.T) {
	manager := NewConfigManager()

	cfg, err := manager.LoadConfig("", "", "", []string{"BTCUSDT", "ETHUSDT"}, -1, 0, 0)
	require.NoError(t, err)

	require.Len(t, cfg.Strategies, 2)
	assert.Equal(t, "BTCUSDT", cfg.Strategies[0].Ticker)
	assert.Equal(t, DefaultShortWindow, cfg.Strategies[0].ShortWindow)
	assert.Equal(t, DefaultLongWindow, cfg.Strategies[0].LongWindow)
	assert.Equal(t, int64(42), cfg.Analysis.Seed)
}

func TestLoadConfig_RequiresStrategies(t *testing.T) {
	manager := NewConfigManager()

	_, err := manager.LoadConfig("", "", "", nil, -1, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strategy")
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	content := `{
		"analysis": {"num_simulations": 250, "seed": 7},
		"backtest": {"initial_balance": 5000, "commission": 0.002},
		"data": {"source": "csv", "data_dir": "testdata"},
		"output": {"directory": "out", "formats": ["console", "json"]},
		"strategies": [{"ticker": "SOLUSDT", "short_window": 3, "long_window": 12}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewConfigManager().LoadConfig(path, "", "", nil, -1, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Analysis.NumSimulations)
	assert.Equal(t, int64(7), cfg.Analysis.Seed)
	assert.Equal(t, 5000.0, cfg.Backtest.InitialBalance)
	assert.Equal(t, "testdata", cfg.Data.DataDir)
	assert.Equal(t, []string{"console", "json"}, cfg.Output.Formats)
	require.Len(t, cfg.Strategies, 1)
	assert.Equal(t, "SOLUSDT", cfg.Strategies[0].Ticker)

	// Sections absent from the file keep their defaults.
	assert.Equal(t, robustness.DefaultConfidenceLevel, cfg.Analysis.ConfidenceLevel)
	assert.Equal(t, DefaultInterval, cfg.Data.Interval)
}

func TestLoadConfig_CommandLineOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	content := `{
		"analysis": {"seed": 7},
		"strategies": [{"ticker": "SOLUSDT", "short_window": 3, "long_window": 12}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewConfigManager().LoadConfig(path, "prices", "reports", []string{"BTCUSDT"}, 99, 500, 2)
	require.NoError(t, err)

	assert.Equal(t, "prices", cfg.Data.DataDir)
	assert.Equal(t, "reports", cfg.Output.Directory)
	assert.Equal(t, int64(99), cfg.Analysis.Seed)
	assert.Equal(t, 500, cfg.Analysis.NumSimulations)
	assert.Equal(t, 2, cfg.Analysis.MaxWorkers)
	require.Len(t, cfg.Strategies, 1)
	assert.Equal(t, "BTCUSDT", cfg.Strategies[0].Ticker)
}

func TestLoadConfig_ZeroSeedOverrides(t *testing.T) {
	cfg, err := NewConfigManager().LoadConfig("", "", "", []string{"BTCUSDT"}, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.Analysis.Seed)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := NewConfigManager().LoadConfig(filepath.Join(t.TempDir(), "absent.json"), "", "", nil, -1, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewConfigManager().LoadConfig(path, "", "", nil, -1, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse config file")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	manager := NewConfigManager()
	cfg := validConfig()
	cfg.Analysis.Seed = 123
	cfg.Output.Formats = []string{FormatConsole, FormatJSON}
	path := filepath.Join(t.TempDir(), "nested", "run.json")

	require.NoError(t, manager.SaveConfig(cfg, path))

	loaded, err := manager.LoadConfig(path, "", "", nil, -1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
