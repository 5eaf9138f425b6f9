package robustness

import (
	"sort"
	"time"
)

// TickerStatus tracks one ticker analysis through its lifecycle
type TickerStatus string

const (
	TickerStatusPending          TickerStatus = "PENDING"
	TickerStatusRunning          TickerStatus = "RUNNING"
	TickerStatusCompleted        TickerStatus = "COMPLETED"
	TickerStatusInsufficientData TickerStatus = "INSUFFICIENT_DATA"
	TickerStatusFailed           TickerStatus = "FAILED"
	TickerStatusTimedOut         TickerStatus = "TIMED_OUT"
)

// PortfolioStatus tracks a whole portfolio run
type PortfolioStatus string

const (
	PortfolioStatusPending   PortfolioStatus = "PENDING"
	PortfolioStatusRunning   PortfolioStatus = "RUNNING"
	PortfolioStatusCompleted PortfolioStatus = "COMPLETED"
	PortfolioStatusAborted   PortfolioStatus = "ABORTED"
)

// Flags attached to a TickerResult
const (
	// FlagUnstableDenominator marks a mean metric too close to zero for the
	// stability ratio to be meaningful; the score is forced to 0
	FlagUnstableDenominator = "unstable-denominator"

	// FlagLowDiversitySampling marks a block length covering the whole
	// series, which degenerates resampling into repetition
	FlagLowDiversitySampling = "low-diversity-sampling"
)

// Interval is a two-sided confidence interval
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// TickerResult is the per-ticker aggregate of one analysis run. It is built
// once and not mutated afterwards.
type TickerResult struct {
	Ticker                string        `json:"ticker"`
	Status                TickerStatus  `json:"status"`
	StabilityScore        float64       `json:"stability_score"`
	ConfidenceInterval    Interval      `json:"confidence_interval"`
	RecommendedParameters ParameterSet  `json:"recommended_parameters"`
	TrialCount            int           `json:"trial_count"`
	FailedTrialCount      int           `json:"failed_trial_count"`
	InvalidDrawCount      int           `json:"invalid_draw_count"`
	MeanMetric            float64       `json:"mean_metric"`
	StdDevMetric          float64       `json:"stddev_metric"`
	MedianMetric          float64       `json:"median_metric"`
	Flags                 []string      `json:"flags,omitempty"`
	Reason                string        `json:"reason,omitempty"`
	Elapsed               time.Duration `json:"elapsed_ns"`
}

// IsStable reports whether the analysis completed with a score at or above
// the threshold
func (r TickerResult) IsStable(threshold float64) bool {
	return r.Status == TickerStatusCompleted && r.StabilityScore >= threshold
}

// RankedTicker is one row of the descending stability ranking
type RankedTicker struct {
	Rank           int          `json:"rank"`
	Ticker         string       `json:"ticker"`
	StabilityScore float64      `json:"stability_score"`
	Status         TickerStatus `json:"status"`
}

// PortfolioSummary aggregates the per-ticker results. MeanStability averages
// over COMPLETED tickers only; tickers in other states stay listed but do not
// contribute.
type PortfolioSummary struct {
	MeanStability  float64        `json:"mean_stability"`
	StableCount    int            `json:"stable_count"`
	UnstableCount  int            `json:"unstable_count"`
	CompletedCount int            `json:"completed_count"`
	TickerCount    int            `json:"ticker_count"`
	RankedTickers  []RankedTicker `json:"ranked_tickers"`
}

// PortfolioReport is the terminal artifact of one portfolio run. PerTicker
// holds exactly one entry per input strategy and preserves the input order
// regardless of completion order.
type PortfolioReport struct {
	Status    PortfolioStatus  `json:"status"`
	Summary   PortfolioSummary `json:"portfolio_summary"`
	PerTicker []TickerResult   `json:"per_ticker"`
	Config    Config           `json:"config"`
	StartedAt time.Time        `json:"started_at"`
	Elapsed   time.Duration    `json:"elapsed_ns"`
}

// summarize builds the portfolio-level aggregate. Ranking covers every entry;
// non-completed entries carry their zero scores and sink to the bottom, with
// input order breaking ties.
func summarize(results []TickerResult, stabilityThreshold float64) PortfolioSummary {
	summary := PortfolioSummary{TickerCount: len(results)}

	sum := 0.0
	for _, r := range results {
		if r.Status != TickerStatusCompleted {
			continue
		}
		summary.CompletedCount++
		sum += r.StabilityScore
		if r.StabilityScore >= stabilityThreshold {
			summary.StableCount++
		} else {
			summary.UnstableCount++
		}
	}
	if summary.CompletedCount > 0 {
		summary.MeanStability = sum / float64(summary.CompletedCount)
	}

	ranked := make([]RankedTicker, len(results))
	for i, r := range results {
		ranked[i] = RankedTicker{
			Ticker:         r.Ticker,
			StabilityScore: r.StabilityScore,
			Status:         r.Status,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].StabilityScore > ranked[j].StabilityScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	summary.RankedTickers = ranked

	return summary
}
