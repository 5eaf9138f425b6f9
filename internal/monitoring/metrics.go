package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Trial metrics
	trialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robustness_trials_total",
			Help: "Total number of simulation trials by outcome",
		},
		[]string{"outcome"},
	)

	invalidDrawsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "robustness_invalid_draws_total",
			Help: "Total number of perturbation draws skipped as invalid",
		},
	)

	// Ticker metrics
	tickerAnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robustness_ticker_analyses_total",
			Help: "Total number of ticker analyses by terminal status",
		},
		[]string{"status"},
	)

	tickerAnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "robustness_ticker_analysis_duration_seconds",
			Help:    "Distribution of per-ticker analysis durations",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	stabilityScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "robustness_stability_score",
			Help: "Last computed stability score per ticker",
		},
		[]string{"ticker"},
	)

	// Pool metrics
	activeWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "robustness_active_workers",
			Help: "Number of worker goroutines currently analyzing a ticker",
		},
	)

	// Portfolio metrics
	portfolioRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robustness_portfolio_runs_total",
			Help: "Total number of portfolio runs by terminal status",
		},
		[]string{"status"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(trialsTotal)
	prometheus.MustRegister(invalidDrawsTotal)
	prometheus.MustRegister(tickerAnalysesTotal)
	prometheus.MustRegister(tickerAnalysisDuration)
	prometheus.MustRegister(stabilityScore)
	prometheus.MustRegister(activeWorkers)
	prometheus.MustRegister(portfolioRunsTotal)
}

// MetricsHandler handles the Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordTrials records the trial outcomes of one ticker analysis
func RecordTrials(succeeded, failed, invalidDraws int) {
	trialsTotal.WithLabelValues("ok").Add(float64(succeeded))
	trialsTotal.WithLabelValues("failed").Add(float64(failed))
	invalidDrawsTotal.Add(float64(invalidDraws))
}

// RecordTickerAnalysis records the terminal status and duration of one
// ticker analysis
func RecordTickerAnalysis(status string, seconds float64) {
	tickerAnalysesTotal.WithLabelValues(status).Inc()
	tickerAnalysisDuration.Observe(seconds)
}

// UpdateStabilityScore publishes the stability score for a ticker
func UpdateStabilityScore(ticker string, score float64) {
	stabilityScore.WithLabelValues(ticker).Set(score)
}

// WorkerStarted marks one worker as busy
func WorkerStarted() {
	activeWorkers.Inc()
}

// WorkerFinished marks one worker as idle
func WorkerFinished() {
	activeWorkers.Dec()
}

// RecordPortfolioRun records a finished portfolio run
func RecordPortfolioRun(status string) {
	portfolioRunsTotal.WithLabelValues(status).Inc()
}
