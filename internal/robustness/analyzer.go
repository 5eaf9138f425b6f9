package robustness

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rnglab/param-robustness/internal/errors"
	"github.com/rnglab/param-robustness/pkg/types"
)

// stabilityEpsilon guards the stability denominator against a near-zero mean
const stabilityEpsilon = 1e-9

// failureSampleLimit bounds the reason strings retained per analysis
const failureSampleLimit = 3

// ExecutionEngine turns one (price series, parameter set) pair into a scalar
// performance metric. Implementations must be safe for concurrent use and
// should honor ctx cancellation on their hot path; a failing evaluation is
// counted as a failed trial, never raised.
type ExecutionEngine interface {
	Evaluate(ctx context.Context, series types.PriceSeries, params ParameterSet) (float64, error)
}

// trial is one successful (sample, perturbed parameters) evaluation
type trial struct {
	index  int
	metric float64
	params ParameterSet
}

// Analyzer quantifies how stable one ticker's parameters are under resampled
// data and perturbed parameters
type Analyzer struct {
	engine ExecutionEngine
}

// NewAnalyzer creates an analyzer over the given execution engine
func NewAnalyzer(engine ExecutionEngine) *Analyzer {
	return &Analyzer{engine: engine}
}

// RunAnalysis executes the full trial loop for one ticker and aggregates the
// metric distribution into a TickerResult. The function is total for valid
// configurations: every failure mode ends up as a status plus reason on the
// result, not an error.
//
// Each trial derives its random state from (cfg.Seed, ticker, trial index),
// so results are bit-identical across runs and worker counts.
func (a *Analyzer) RunAnalysis(ctx context.Context, ticker string, series types.PriceSeries, baseParams ParameterSet, cfg Config) TickerResult {
	started := time.Now()
	result := TickerResult{
		Ticker:                ticker,
		Status:                TickerStatusRunning,
		RecommendedParameters: baseParams,
	}

	if len(series) < cfg.MinRequiredBars {
		result.Status = TickerStatusInsufficientData
		result.Reason = fmt.Sprintf("%d bars available, %d required", len(series), cfg.MinRequiredBars)
		result.Elapsed = time.Since(started)
		return result
	}

	blockSize := clampBlockSize(cfg.BlockSize, len(series))
	if blockSize >= len(series) {
		result.Flags = append(result.Flags, FlagLowDiversitySampling)
	}

	tally := errors.NewFailureTally(failureSampleLimit)
	successes := make([]trial, 0, cfg.NumSimulations)

	for i := 0; i < cfg.NumSimulations; i++ {
		rng := rand.New(rand.NewSource(deriveTrialSeed(cfg.Seed, ticker, i)))

		sample := sampleBlockBootstrap(series, blockSize, rng)
		params, err := perturbOnce(baseParams, cfg.NoiseFraction, cfg.MaxRetriesPerDraw, rng)
		if err != nil {
			tally.Record(errors.Downgrade(err, "analyzer", "perturb_draw"))
			log.Debug().Str("ticker", ticker).Int("trial", i).Err(err).Msg("Perturbation draw skipped")
			continue
		}

		metric, err := a.evaluateTrial(ctx, sample, params, cfg.TrialTimeout)
		if err != nil {
			tally.Record(errors.NewTrialExecutionError("analyzer", "evaluate_trial", err))
			log.Debug().Str("ticker", ticker).Int("trial", i).Err(err).Msg("Trial failed")
			continue
		}

		successes = append(successes, trial{index: i, metric: metric, params: params})
	}

	result.TrialCount = cfg.NumSimulations
	result.FailedTrialCount = cfg.NumSimulations - len(successes)
	result.InvalidDrawCount = tally.ByCategory[errors.ErrorCategoryInvalidParameter]

	failedRatio := float64(result.FailedTrialCount) / float64(cfg.NumSimulations)
	if failedRatio > cfg.MaxFailedTrialRatio {
		result.Status = TickerStatusInsufficientData
		result.Reason = fmt.Sprintf("failed trial ratio %.2f exceeds %.2f (%s)",
			failedRatio, cfg.MaxFailedTrialRatio, tally.Summary())
		result.Elapsed = time.Since(started)
		return result
	}

	metrics := make([]float64, len(successes))
	for i, t := range successes {
		metrics[i] = t.metric
	}

	result.MeanMetric = mean(metrics)
	result.StdDevMetric = stdDev(metrics)
	result.MedianMetric = median(metrics)
	result.ConfidenceInterval = confidenceInterval(metrics, cfg.ConfidenceLevel)

	if math.Abs(result.MeanMetric) < stabilityEpsilon {
		result.StabilityScore = 0
		result.Flags = append(result.Flags, FlagUnstableDenominator)
	} else {
		result.StabilityScore = clip(1-result.StdDevMetric/math.Abs(result.MeanMetric), 0, 1)
	}

	result.RecommendedParameters = recommendParameters(successes, result.MedianMetric, baseParams, cfg.RecommendTolerance)
	result.Status = TickerStatusCompleted
	result.Elapsed = time.Since(started)

	log.Info().
		Str("ticker", ticker).
		Float64("stability", result.StabilityScore).
		Int("failed_trials", result.FailedTrialCount).
		Dur("elapsed", result.Elapsed).
		Msg("Ticker analysis completed")

	return result
}

// evaluateTrial invokes the execution engine under the per-trial deadline
func (a *Analyzer) evaluateTrial(ctx context.Context, sample types.PriceSeries, params ParameterSet, timeout time.Duration) (float64, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return a.engine.Evaluate(ctx, sample, params)
}

// recommendParameters picks the parameter set of the successful trial whose
// metric sits closest to the median, ties going to the lowest trial index.
// When the base set itself showed up among the trials with a metric within
// tolerance of the median, it wins: the original is already representative
// and an arbitrarily perturbed sibling should not displace it.
func recommendParameters(successes []trial, medianMetric float64, base ParameterSet, tolerance float64) ParameterSet {
	if len(successes) == 0 {
		return base
	}

	toleranceAbs := tolerance * math.Max(math.Abs(medianMetric), stabilityEpsilon)
	for _, t := range successes {
		if t.params.Equal(base) && math.Abs(t.metric-medianMetric) <= toleranceAbs {
			return t.params
		}
	}

	best := successes[0]
	bestDist := math.Abs(best.metric - medianMetric)
	for _, t := range successes[1:] {
		if dist := math.Abs(t.metric - medianMetric); dist < bestDist {
			best, bestDist = t, dist
		}
	}
	return best.params
}

// deriveTrialSeed folds the global seed, ticker and trial index into one
// deterministic per-trial seed
func deriveTrialSeed(globalSeed int64, ticker string, trialIndex int) int64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(globalSeed))
	h.Write(buf[:])
	h.Write([]byte(ticker))
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(trialIndex)))
	h.Write(buf[:])

	return int64(h.Sum64())
}
