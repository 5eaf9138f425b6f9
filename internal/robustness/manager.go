package robustness

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rnglab/param-robustness/internal/errors"
	"github.com/rnglab/param-robustness/internal/monitoring"
	"github.com/rnglab/param-robustness/pkg/types"
)

// SeriesFunc obtains the price series for a ticker. Implementations are
// expected to serve from an immutable, already-populated cache and must be
// safe for concurrent calls.
type SeriesFunc func(ticker string) (types.PriceSeries, error)

// ProgressFunc receives completion-driven progress updates: one call per
// finished ticker group, never on a polling interval
type ProgressFunc func(completed, total int, elapsed, estimatedRemaining time.Duration)

// Manager orchestrates concurrent per-ticker analysis across a bounded worker
// pool, isolates per-ticker failures, and assembles the portfolio report
type Manager struct {
	analyzer   *Analyzer
	loadSeries SeriesFunc
	progressFn ProgressFunc
}

// NewManager wires an execution engine and a series source into a manager
func NewManager(engine ExecutionEngine, loadSeries SeriesFunc) *Manager {
	return &Manager{
		analyzer:   NewAnalyzer(engine),
		loadSeries: loadSeries,
	}
}

// SetProgressFunc installs the progress callback
func (m *Manager) SetProgressFunc(fn ProgressFunc) {
	m.progressFn = fn
}

// tickerUnit is one unit of pool work: every input strategy sharing a ticker,
// analyzed sequentially over a single series load
type tickerUnit struct {
	ticker  string
	indices []int // positions in the input strategies slice
}

// unitOutcome carries a finished unit's results keyed by strategy index
type unitOutcome struct {
	results map[int]TickerResult
}

// AnalyzePortfolio runs the robustness analysis for every input strategy and
// returns the portfolio report.
//
// Strategies are grouped by ticker; each group is one unit of work on a pool
// of min(cfg.MaxWorkers, runtime.NumCPU()) workers. Unexpected unit failures
// become FAILED entries and never abort sibling units. Cancellation is
// cooperative: it stops dispatching new units, lets running ones finish, and
// yields an ABORTED report. When cfg.OverallTimeout elapses, units that have
// not completed are marked TIMED_OUT and the report is assembled immediately.
//
// PerTicker preserves input order regardless of completion order, and trial
// seeding makes the numeric results independent of the worker count.
func (m *Manager) AnalyzePortfolio(ctx context.Context, strategies []StrategyDescriptor, cfg Config) (*PortfolioReport, error) {
	if len(strategies) == 0 {
		return nil, errors.NewPortfolioAnalysisError("manager", "analyze_portfolio", "no strategies supplied")
	}
	for i, s := range strategies {
		if s.Ticker == "" {
			return nil, errors.NewPortfolioAnalysisError("manager", "analyze_portfolio",
				fmt.Sprintf("strategy %d has an empty ticker", i))
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	units := groupByTicker(strategies)
	workerCount := resolveWorkerCount(cfg.MaxWorkers)

	log.Info().
		Int("strategies", len(strategies)).
		Int("tickers", len(units)).
		Int("workers", workerCount).
		Int64("seed", cfg.Seed).
		Msg("Portfolio analysis started")

	results := make([]TickerResult, len(strategies))
	for i, s := range strategies {
		results[i] = TickerResult{
			Ticker:                s.Ticker,
			Status:                TickerStatusPending,
			RecommendedParameters: s.BaseParameters,
		}
	}

	// Running units keep their own context: caller cancellation must not
	// preempt them, only stop further dispatch.
	poolCtx, cancelPool := context.WithCancel(context.Background())
	defer cancelPool()

	jobs := make(chan int)
	outcomes := make(chan unitOutcome, len(units))

	for w := 0; w < workerCount; w++ {
		go func() {
			for unitIdx := range jobs {
				monitoring.WorkerStarted()
				outcomes <- m.runUnit(poolCtx, units[unitIdx], strategies, cfg)
				monitoring.WorkerFinished()
			}
		}()
	}

	tracker := NewProgressTracker(len(units))
	ctxDone := ctx.Done()

	var timeoutC <-chan time.Time
	if cfg.OverallTimeout > 0 {
		timer := time.NewTimer(cfg.OverallTimeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	next := 0 // next unit to dispatch
	completed := 0
	aborted := false
	timedOut := false

	for completed < len(units) {
		// Dispatch is gated here so the cancellation check happens before
		// every not-yet-started unit.
		var dispatchC chan int
		if next < len(units) && !aborted {
			dispatchC = jobs
		}

		select {
		case dispatchC <- next:
			for _, idx := range units[next].indices {
				results[idx].Status = TickerStatusRunning
			}
			next++

		case outcome := <-outcomes:
			for idx, res := range outcome.results {
				results[idx] = res
			}
			completed++
			tracker.MarkCompleted()
			m.reportProgress(tracker)

		case <-ctxDone:
			aborted = true
			ctxDone = nil
			log.Warn().Int("dispatched", next).Int("completed", completed).Msg("Cancellation requested, draining running tickers")

		case <-timeoutC:
			timedOut = true
			timeoutC = nil
		}

		if timedOut {
			break
		}
		if aborted && completed >= next {
			break
		}
	}
	close(jobs)

	if timedOut {
		reason := fmt.Sprintf("portfolio timeout of %s elapsed", cfg.OverallTimeout)
		for i := range results {
			if results[i].Status == TickerStatusPending || results[i].Status == TickerStatusRunning {
				results[i].Status = TickerStatusTimedOut
				results[i].Reason = reason
			}
		}
		log.Warn().Dur("timeout", cfg.OverallTimeout).Int("completed", completed).Int("total", len(units)).Msg("Portfolio timeout elapsed")
	}

	report := &PortfolioReport{
		Status:    PortfolioStatusCompleted,
		PerTicker: results,
		Config:    cfg,
		StartedAt: started,
		Elapsed:   time.Since(started),
	}
	if aborted {
		report.Status = PortfolioStatusAborted
	}
	report.Summary = summarize(results, cfg.StabilityThreshold)

	monitoring.RecordPortfolioRun(string(report.Status))
	log.Info().
		Str("status", string(report.Status)).
		Float64("mean_stability", report.Summary.MeanStability).
		Int("stable", report.Summary.StableCount).
		Int("unstable", report.Summary.UnstableCount).
		Dur("elapsed", report.Elapsed).
		Msg("Portfolio analysis finished")

	return report, nil
}

// runUnit analyzes every strategy of one ticker group over a single series
// load. Unexpected failures, panics included, are downgraded to FAILED
// entries at this boundary so sibling units keep running.
func (m *Manager) runUnit(ctx context.Context, unit tickerUnit, strategies []StrategyDescriptor, cfg Config) (outcome unitOutcome) {
	outcome.results = make(map[int]TickerResult, len(unit.indices))

	defer func() {
		if r := recover(); r != nil {
			err := errors.NewTickerAnalysisError("manager", "run_unit", fmt.Errorf("panic: %v", r))
			log.Error().Str("ticker", unit.ticker).Interface("panic", r).Msg("Ticker analysis panicked")
			for _, idx := range unit.indices {
				if _, ok := outcome.results[idx]; !ok {
					outcome.results[idx] = failedResult(strategies[idx], err)
					monitoring.RecordTickerAnalysis(string(TickerStatusFailed), 0)
				}
			}
		}
	}()

	series, err := m.loadSeries(unit.ticker)
	if err != nil {
		wrapped := errors.Downgrade(err, "manager", "load_series")
		log.Error().Str("ticker", unit.ticker).Err(err).Msg("Series load failed")
		for _, idx := range unit.indices {
			outcome.results[idx] = failedResult(strategies[idx], wrapped)
			monitoring.RecordTickerAnalysis(string(TickerStatusFailed), 0)
		}
		return outcome
	}

	for _, idx := range unit.indices {
		res := m.analyzer.RunAnalysis(ctx, unit.ticker, series, strategies[idx].BaseParameters, cfg)
		outcome.results[idx] = res

		monitoring.RecordTickerAnalysis(string(res.Status), res.Elapsed.Seconds())
		monitoring.RecordTrials(res.TrialCount-res.FailedTrialCount, res.FailedTrialCount, res.InvalidDrawCount)
		if res.Status == TickerStatusCompleted {
			monitoring.UpdateStabilityScore(res.Ticker, res.StabilityScore)
		}
	}
	return outcome
}

func (m *Manager) reportProgress(tracker *ProgressTracker) {
	if m.progressFn == nil {
		return
	}
	completed, total, elapsed := tracker.Progress()
	m.progressFn(completed, total, elapsed, tracker.EstimateRemaining())
}

// failedResult builds the downgraded entry for a strategy whose analysis
// never produced a result of its own
func failedResult(s StrategyDescriptor, err *errors.EngineError) TickerResult {
	return TickerResult{
		Ticker:                s.Ticker,
		Status:                TickerStatusFailed,
		RecommendedParameters: s.BaseParameters,
		Reason:                err.Error(),
	}
}

// groupByTicker collects strategy indices per ticker, preserving first
// appearance order
func groupByTicker(strategies []StrategyDescriptor) []tickerUnit {
	byTicker := make(map[string]int)
	units := make([]tickerUnit, 0, len(strategies))

	for i, s := range strategies {
		pos, ok := byTicker[s.Ticker]
		if !ok {
			pos = len(units)
			byTicker[s.Ticker] = pos
			units = append(units, tickerUnit{ticker: s.Ticker})
		}
		units[pos].indices = append(units[pos].indices, i)
	}
	return units
}

// resolveWorkerCount bounds the pool at the available parallelism
func resolveWorkerCount(maxWorkers int) int {
	available := runtime.NumCPU()
	if maxWorkers <= 0 || maxWorkers > available {
		return available
	}
	return maxWorkers
}

// ProgressTracker accumulates completion counts for one run and derives
// elapsed and remaining time estimates
type ProgressTracker struct {
	mu        sync.RWMutex
	total     int
	completed int
	startTime time.Time
}

// NewProgressTracker creates a tracker for the given unit count
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// MarkCompleted records one finished unit
func (pt *ProgressTracker) MarkCompleted() {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.completed++
}

// Progress returns the completed count, total count and elapsed time
func (pt *ProgressTracker) Progress() (completed, total int, elapsed time.Duration) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	return pt.completed, pt.total, time.Since(pt.startTime)
}

// EstimateRemaining projects the remaining time from the average time per
// completed unit. Zero until the first unit completes.
func (pt *ProgressTracker) EstimateRemaining() time.Duration {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	if pt.completed == 0 {
		return 0
	}
	avgPerUnit := time.Since(pt.startTime) / time.Duration(pt.completed)
	return avgPerUnit * time.Duration(pt.total-pt.completed)
}
