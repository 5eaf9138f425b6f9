package robustness

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rnglab/param-robustness/internal/errors"
)

// GenerateNoisyParameters produces numVariations domain-valid parameter sets
// around base. Each numeric field receives a uniform random offset in
// [-noiseFraction*value, +noiseFraction*value], rounded to the field's native
// precision. A draw that violates the base set's constraints is redrawn up to
// maxRetriesPerDraw times and then skipped; the second return value counts the
// skipped variations. Pure function of its inputs and seed.
func GenerateNoisyParameters(base ParameterSet, noiseFraction float64, numVariations int, seed int64, maxRetriesPerDraw int) ([]ParameterSet, int) {
	rng := rand.New(rand.NewSource(seed))

	sets := make([]ParameterSet, 0, numVariations)
	invalidDraws := 0
	for i := 0; i < numVariations; i++ {
		set, err := perturbOnce(base, noiseFraction, maxRetriesPerDraw, rng)
		if err != nil {
			invalidDraws++
			continue
		}
		sets = append(sets, set)
	}
	return sets, invalidDraws
}

// perturbOnce draws one perturbed set, redrawing while constraints are violated.
// Field order is the sorted name order, so the rng stream is consumed
// identically for identical inputs.
func perturbOnce(base ParameterSet, noiseFraction float64, maxRetries int, rng *rand.Rand) (ParameterSet, error) {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		values := make(map[string]float64, base.Len())
		for _, name := range base.names {
			v := base.values[name]
			perturbed := v + (2*rng.Float64()-1)*noiseFraction*v
			if base.intFields[name] {
				perturbed = math.Round(perturbed)
			}
			values[name] = perturbed
		}

		candidate := base.withValues(values)
		if err := candidate.Validate(); err == nil {
			return candidate, nil
		}
	}

	return ParameterSet{}, errors.NewInvalidParameterError("perturbation", "generate_noisy_parameters",
		fmt.Sprintf("no valid draw within %d retries of [%s]", maxRetries, base.String()))
}
