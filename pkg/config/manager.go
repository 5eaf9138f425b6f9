package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigManager loads, merges, and persists robustness run configurations.
type ConfigManager struct{}

// NewConfigManager creates a new configuration manager.
func NewConfigManager() *ConfigManager {
	return &ConfigManager{}
}

// LoadConfig builds the effective configuration for a run. It starts from
// defaults, merges the JSON config file when one is given, and finally applies
// command line overrides. An empty string or nil slice keeps the configured
// value; seed uses negative and the counts use zero for the same purpose.
func (m *ConfigManager) LoadConfig(configFile, dataDir, outputDir string, tickers []string,
	seed int64, simulations, workers int) (*RobustnessConfig, error) {

	cfg := NewDefaultRobustnessConfig()

	if configFile != "" {
		if err := m.loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Command line values take precedence over file settings.
	if dataDir != "" {
		cfg.Data.DataDir = dataDir
	}
	if outputDir != "" {
		cfg.Output.Directory = outputDir
	}
	if len(tickers) > 0 {
		cfg.Strategies = DefaultStrategies(tickers)
	}
	if seed >= 0 {
		cfg.Analysis.Seed = seed
	}
	if simulations > 0 {
		cfg.Analysis.NumSimulations = simulations
	}
	if workers > 0 {
		cfg.Analysis.MaxWorkers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile merges the JSON file at path into cfg.
func (m *ConfigManager) loadFromFile(path string, cfg *RobustnessConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("could not parse config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration as indented JSON, creating the target
// directory when needed.
func (m *ConfigManager) SaveConfig(cfg *RobustnessConfig, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultStrategies builds one default-window strategy entry per ticker.
func DefaultStrategies(tickers []string) []StrategyConfig {
	strategies := make([]StrategyConfig, 0, len(tickers))
	for _, ticker := range tickers {
		strategies = append(strategies, StrategyConfig{
			Ticker:      ticker,
			ShortWindow: DefaultShortWindow,
			LongWindow:  DefaultLongWindow,
		})
	}
	return strategies
}
