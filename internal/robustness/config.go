package robustness

import (
	"fmt"
	"time"

	"github.com/rnglab/param-robustness/internal/errors"
)

// Default analysis settings
const (
	DefaultNumSimulations      = 100
	DefaultConfidenceLevel     = 0.95
	DefaultNoiseFraction       = 0.05
	DefaultStabilityThreshold  = 0.7
	DefaultMaxFailedTrialRatio = 0.5
	DefaultMinRequiredBars     = 30
	DefaultMaxRetriesPerDraw   = 5
	DefaultRecommendTolerance  = 0.05
	DefaultSeed                = 42
	DefaultTrialTimeout        = 30 * time.Second
)

// Config holds the knobs of one portfolio robustness run
type Config struct {
	NumSimulations      int           `json:"num_simulations"`
	ConfidenceLevel     float64       `json:"confidence_level"`
	NoiseFraction       float64       `json:"noise_fraction"`
	BlockSize           int           `json:"block_size"`            // 0 selects the cube-root heuristic per series
	MaxWorkers          int           `json:"max_workers"`           // 0 selects runtime.NumCPU()
	StabilityThreshold  float64       `json:"stability_threshold"`
	MaxFailedTrialRatio float64       `json:"max_failed_trial_ratio"`
	MinRequiredBars     int           `json:"min_required_bars"`
	Seed                int64         `json:"seed"`
	MaxRetriesPerDraw   int           `json:"max_retries_per_draw"`
	RecommendTolerance  float64       `json:"recommend_tolerance"`
	TrialTimeout        time.Duration `json:"trial_timeout"`
	OverallTimeout      time.Duration `json:"overall_timeout"` // 0 disables the portfolio deadline
}

// DefaultConfig returns the default analysis configuration
func DefaultConfig() Config {
	return Config{
		NumSimulations:      DefaultNumSimulations,
		ConfidenceLevel:     DefaultConfidenceLevel,
		NoiseFraction:       DefaultNoiseFraction,
		BlockSize:           0,
		MaxWorkers:          0,
		StabilityThreshold:  DefaultStabilityThreshold,
		MaxFailedTrialRatio: DefaultMaxFailedTrialRatio,
		MinRequiredBars:     DefaultMinRequiredBars,
		Seed:                DefaultSeed,
		MaxRetriesPerDraw:   DefaultMaxRetriesPerDraw,
		RecommendTolerance:  DefaultRecommendTolerance,
		TrialTimeout:        DefaultTrialTimeout,
		OverallTimeout:      0,
	}
}

// Validate rejects structurally invalid configurations. A failing config is a
// fatal portfolio-analysis error: no report can be produced from it.
func (c Config) Validate() error {
	fail := func(message string) error {
		return errors.NewPortfolioAnalysisError("robustness", "validate_config", message)
	}

	if c.NumSimulations < 1 {
		return fail(fmt.Sprintf("num_simulations must be at least 1, got %d", c.NumSimulations))
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return fail(fmt.Sprintf("confidence_level must be in (0, 1), got %g", c.ConfidenceLevel))
	}
	if c.NoiseFraction < 0 || c.NoiseFraction >= 1 {
		return fail(fmt.Sprintf("noise_fraction must be in [0, 1), got %g", c.NoiseFraction))
	}
	if c.BlockSize < 0 {
		return fail(fmt.Sprintf("block_size must not be negative, got %d", c.BlockSize))
	}
	if c.MaxWorkers < 0 {
		return fail(fmt.Sprintf("max_workers must not be negative, got %d", c.MaxWorkers))
	}
	if c.StabilityThreshold < 0 || c.StabilityThreshold > 1 {
		return fail(fmt.Sprintf("stability_threshold must be in [0, 1], got %g", c.StabilityThreshold))
	}
	if c.MaxFailedTrialRatio < 0 || c.MaxFailedTrialRatio > 1 {
		return fail(fmt.Sprintf("max_failed_trial_ratio must be in [0, 1], got %g", c.MaxFailedTrialRatio))
	}
	if c.MinRequiredBars < 2 {
		return fail(fmt.Sprintf("min_required_bars must be at least 2, got %d", c.MinRequiredBars))
	}
	if c.MaxRetriesPerDraw < 0 {
		return fail(fmt.Sprintf("max_retries_per_draw must not be negative, got %d", c.MaxRetriesPerDraw))
	}
	if c.RecommendTolerance < 0 {
		return fail(fmt.Sprintf("recommend_tolerance must not be negative, got %g", c.RecommendTolerance))
	}
	if c.TrialTimeout < 0 {
		return fail(fmt.Sprintf("trial_timeout must not be negative, got %s", c.TrialTimeout))
	}
	if c.OverallTimeout < 0 {
		return fail(fmt.Sprintf("overall_timeout must not be negative, got %s", c.OverallTimeout))
	}

	return nil
}
