package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/rnglab/param-robustness/internal/robustness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluator_InvalidArguments(t *testing.T) {
	_, err := NewEvaluator(0, 0.001)
	assert.Error(t, err)

	_, err = NewEvaluator(10000.0, 1.5)
	assert.Error(t, err)
}

func TestEvaluator_Evaluate_MissingParameters(t *testing.T) {
	evaluator, err := NewEvaluator(DefaultInitialBalance, DefaultCommission)
	require.NoError(t, err)

	params := robustness.NewParameterSet(map[string]float64{"unrelated": 3})
	_, err = evaluator.Evaluate(context.Background(), generateTrendData(100, 100, 0.5), params)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "short_window")
}

func TestEvaluator_Evaluate_InvalidWindows(t *testing.T) {
	evaluator, err := NewEvaluator(DefaultInitialBalance, DefaultCommission)
	require.NoError(t, err)

	params := robustness.NewParameterSet(map[string]float64{
		ParamShortWindow: 20,
		ParamLongWindow:  5,
	})
	_, err = evaluator.Evaluate(context.Background(), generateTrendData(100, 100, 0.5), params)
	assert.Error(t, err)
}

func TestEvaluator_Evaluate_FlatSeriesYieldsUnity(t *testing.T) {
	evaluator, err := NewEvaluator(DefaultInitialBalance, DefaultCommission)
	require.NoError(t, err)

	metric, err := evaluator.Evaluate(context.Background(), generateFlatSeries(200, 100), CrossoverParameters(5, 20))
	require.NoError(t, err)
	assert.Equal(t, 1.0, metric)
}

func TestEvaluator_Evaluate_RisingSeriesBeatsUnity(t *testing.T) {
	evaluator, err := NewEvaluator(DefaultInitialBalance, DefaultCommission)
	require.NoError(t, err)

	metric, err := evaluator.Evaluate(context.Background(), generateTrendData(200, 100, 0.5), CrossoverParameters(5, 20))
	require.NoError(t, err)
	assert.Greater(t, metric, 1.0)
}

func TestEvaluator_Evaluate_Deterministic(t *testing.T) {
	evaluator, err := NewEvaluator(DefaultInitialBalance, DefaultCommission)
	require.NoError(t, err)

	series := generateTrendData(200, 100, 0.5)
	params := CrossoverParameters(5, 20)

	first, err := evaluator.Evaluate(context.Background(), series, params)
	require.NoError(t, err)
	second, err := evaluator.Evaluate(context.Background(), series, params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluator_Evaluate_HonorsDeadline(t *testing.T) {
	evaluator, err := NewEvaluator(DefaultInitialBalance, DefaultCommission)
	require.NoError(t, err)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err = evaluator.Evaluate(ctx, generateTrendData(200, 100, 0.5), CrossoverParameters(5, 20))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCrossoverParameters(t *testing.T) {
	params := CrossoverParameters(5, 20)

	short, ok := params.Int(ParamShortWindow)
	require.True(t, ok)
	assert.Equal(t, 5, short)

	long, ok := params.Int(ParamLongWindow)
	require.True(t, ok)
	assert.Equal(t, 20, long)

	assert.True(t, params.IsIntField(ParamShortWindow))
	assert.True(t, params.IsIntField(ParamLongWindow))
	assert.NoError(t, params.Validate())

	// Violating the window order must fail validation
	inverted := CrossoverParameters(20, 5)
	assert.Error(t, inverted.Validate())
}

func TestEvaluator_ImplementsExecutionEngine(t *testing.T) {
	evaluator, err := NewEvaluator(DefaultInitialBalance, DefaultCommission)
	require.NoError(t, err)

	var _ robustness.ExecutionEngine = evaluator
	assert.NotNil(t, evaluator)
}
