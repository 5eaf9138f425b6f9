package robustness

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rnglab/param-robustness/internal/errors"
	"github.com/rnglab/param-robustness/pkg/types"
)

// GenerateBlockBootstrap produces numSamples resampled alternate histories of
// series. Each sample is built by concatenating uniformly chosen contiguous
// blocks of blockSize bars (with replacement across draws) and truncating to
// the source length, which preserves short-range autocorrelation that
// single-bar resampling would destroy.
//
// blockSize <= 0 selects the cube-root heuristic; blockSize > len(series) is
// clamped to the series length (degenerate whole-series repetition, still a
// valid sample). Output is deterministic for a fixed seed.
func GenerateBlockBootstrap(series types.PriceSeries, blockSize, numSamples int, seed int64) ([]types.PriceSeries, error) {
	if len(series) < 2 {
		return nil, errors.NewDataInsufficientError("sampler", "generate_block_bootstrap",
			fmt.Sprintf("need at least 2 bars to form a block, got %d", len(series)))
	}
	if numSamples < 1 {
		return nil, fmt.Errorf("num_samples must be at least 1, got %d", numSamples)
	}

	blockSize = clampBlockSize(blockSize, len(series))
	rng := rand.New(rand.NewSource(seed))

	samples := make([]types.PriceSeries, numSamples)
	for i := range samples {
		samples[i] = sampleBlockBootstrap(series, blockSize, rng)
	}
	return samples, nil
}

// sampleBlockBootstrap draws one resampled series of exactly the source length
func sampleBlockBootstrap(series types.PriceSeries, blockSize int, rng *rand.Rand) types.PriceSeries {
	length := len(series)
	out := make(types.PriceSeries, 0, length+blockSize)

	for len(out) < length {
		start := rng.Intn(length - blockSize + 1)
		out = append(out, series[start:start+blockSize]...)
	}
	return out[:length]
}

// clampBlockSize resolves the effective block length for a series. A
// non-positive request falls back to the cube-root heuristic, a request longer
// than the series is clamped to the series length.
func clampBlockSize(blockSize, seriesLen int) int {
	if blockSize <= 0 {
		blockSize = int(math.Cbrt(float64(seriesLen)))
		if blockSize < 1 {
			blockSize = 1
		}
	}
	if blockSize > seriesLen {
		blockSize = seriesLen
	}
	return blockSize
}
