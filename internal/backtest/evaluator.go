package backtest

import (
	"context"
	"fmt"

	"github.com/rnglab/param-robustness/internal/robustness"
	"github.com/rnglab/param-robustness/internal/strategy"
	"github.com/rnglab/param-robustness/pkg/types"
)

// Parameter names understood by the crossover evaluator
const (
	ParamShortWindow = "short_window"
	ParamLongWindow  = "long_window"
)

const (
	DefaultInitialBalance = 10000.0
	DefaultCommission     = 0.001
)

// Evaluator adapts the backtest engine to the robustness engine contract:
// replay a crossover strategy built from one parameter draw over one
// resampled series and report the equity growth multiple. A series that
// produces no signals leaves the balance untouched and scores exactly 1.0.
type Evaluator struct {
	initialBalance float64
	commission     float64
}

func NewEvaluator(initialBalance, commission float64) (*Evaluator, error) {
	if initialBalance <= 0 {
		return nil, fmt.Errorf("initial balance must be positive, got %v", initialBalance)
	}
	if commission < 0 || commission >= 1 {
		return nil, fmt.Errorf("commission must be in [0, 1), got %v", commission)
	}
	return &Evaluator{
		initialBalance: initialBalance,
		commission:     commission,
	}, nil
}

func (ev *Evaluator) Evaluate(ctx context.Context, series types.PriceSeries, params robustness.ParameterSet) (float64, error) {
	shortWindow, ok := params.Int(ParamShortWindow)
	if !ok {
		return 0, fmt.Errorf("parameter %q missing", ParamShortWindow)
	}
	longWindow, ok := params.Int(ParamLongWindow)
	if !ok {
		return 0, fmt.Errorf("parameter %q missing", ParamLongWindow)
	}

	strat, err := strategy.NewMACrossoverStrategy(shortWindow, longWindow)
	if err != nil {
		return 0, err
	}
	engine, err := NewEngine(ev.initialBalance, ev.commission)
	if err != nil {
		return 0, err
	}

	results, err := engine.Run(ctx, series, strat)
	if err != nil {
		return 0, err
	}
	return results.GrowthMultiple, nil
}

// CrossoverParameters builds a parameter set for the crossover evaluator with
// the window-order and positivity constraints attached
func CrossoverParameters(shortWindow, longWindow int) robustness.ParameterSet {
	return robustness.NewParameterSet(map[string]float64{
		ParamShortWindow: float64(shortWindow),
		ParamLongWindow:  float64(longWindow),
	}).
		WithIntFields(ParamShortWindow, ParamLongWindow).
		WithConstraints(
			robustness.MinValue(ParamShortWindow, 1),
			robustness.MinValue(ParamLongWindow, 2),
			robustness.WindowOrder(ParamShortWindow, ParamLongWindow),
		)
}
