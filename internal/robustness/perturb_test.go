package robustness

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rnglab/param-robustness/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNoisyParameters_WithinBounds(t *testing.T) {
	base := NewParameterSet(map[string]float64{
		"threshold": 0.4,
		"scale":     200,
	})
	noise := 0.1

	sets, invalid := GenerateNoisyParameters(base, noise, 50, 42, 5)
	require.Len(t, sets, 50)
	assert.Equal(t, 0, invalid)

	for _, set := range sets {
		for _, name := range base.Names() {
			v, _ := base.Value(name)
			got, ok := set.Value(name)
			require.True(t, ok)
			assert.GreaterOrEqual(t, got, v*(1-noise))
			assert.LessOrEqual(t, got, v*(1+noise))
		}
	}
}

func TestGenerateNoisyParameters_IntFieldsStayIntegral(t *testing.T) {
	base := NewParameterSet(map[string]float64{
		"short_window": 5,
		"long_window":  20,
	}).WithIntFields("short_window", "long_window")

	sets, _ := GenerateNoisyParameters(base, 0.3, 50, 42, 5)
	require.NotEmpty(t, sets)

	for _, set := range sets {
		for _, name := range base.Names() {
			v, _ := set.Value(name)
			assert.Equal(t, math.Round(v), v, "%s must stay integral", name)
		}
	}
}

func TestGenerateNoisyParameters_Deterministic(t *testing.T) {
	base := crossoverBase()

	first, firstInvalid := GenerateNoisyParameters(base, 0.2, 30, 42, 5)
	second, secondInvalid := GenerateNoisyParameters(base, 0.2, 30, 42, 5)

	assert.Equal(t, firstInvalid, secondInvalid)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].Equal(second[i]), "draw %d must match", i)
	}
}

func TestGenerateNoisyParameters_ZeroNoise(t *testing.T) {
	base := crossoverBase()

	sets, invalid := GenerateNoisyParameters(base, 0, 10, 42, 5)
	require.Len(t, sets, 10)
	assert.Equal(t, 0, invalid)

	for _, set := range sets {
		assert.True(t, set.Equal(base))
	}
}

func TestGenerateNoisyParameters_AllDrawsSatisfyConstraints(t *testing.T) {
	// Windows one apart under heavy noise: many raw draws violate the
	// ordering and must be redrawn or skipped, never returned
	base := NewParameterSet(map[string]float64{
		"short_window": 10,
		"long_window":  11,
	}).
		WithIntFields("short_window", "long_window").
		WithConstraints(WindowOrder("short_window", "long_window"))

	sets, invalid := GenerateNoisyParameters(base, 0.3, 100, 42, 3)
	assert.Equal(t, 100, len(sets)+invalid)

	for _, set := range sets {
		assert.NoError(t, set.Validate())
	}
}

func TestGenerateNoisyParameters_ImpossibleConstraint(t *testing.T) {
	base := NewParameterSet(map[string]float64{"x": 1}).
		WithConstraints(MinValue("x", 1000))

	sets, invalid := GenerateNoisyParameters(base, 0.1, 20, 42, 5)
	assert.Empty(t, sets)
	assert.Equal(t, 20, invalid)
}

func TestGenerateNoisyParameters_BaseUntouched(t *testing.T) {
	base := crossoverBase()
	before := base.Values()

	GenerateNoisyParameters(base, 0.3, 50, 42, 5)

	assert.Equal(t, before, base.Values())
}

func TestPerturbOnce_RetryExhaustion(t *testing.T) {
	base := NewParameterSet(map[string]float64{"x": 1}).
		WithConstraints(MinValue("x", 1000))
	rng := rand.New(rand.NewSource(42))

	_, err := perturbOnce(base, 0.1, 3, rng)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidParameter(err))
}

func TestPerturbOnce_KeepsMarkersAndConstraints(t *testing.T) {
	base := crossoverBase()
	rng := rand.New(rand.NewSource(42))

	set, err := perturbOnce(base, 0.2, 5, rng)
	require.NoError(t, err)

	assert.True(t, set.IsIntField("short_window"))
	assert.True(t, set.IsIntField("long_window"))
	assert.NoError(t, set.Validate())
}
