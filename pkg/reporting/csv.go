package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rnglab/param-robustness/internal/robustness"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// csvHeader lists the per-ticker columns in output order
var csvHeader = []string{
	"ticker",
	"status",
	"stability_score",
	"ci_low",
	"ci_high",
	"mean_metric",
	"stddev_metric",
	"median_metric",
	"trials",
	"failed_trials",
	"invalid_draws",
	"recommended_parameters",
	"flags",
	"reason",
	"elapsed_seconds",
}

// WriteReport writes one row per input strategy plus a trailing summary row.
func (r *DefaultCSVReporter) WriteReport(report *robustness.PortfolioReport, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, result := range report.PerTicker {
		row := []string{
			result.Ticker,
			string(result.Status),
			formatFloat(result.StabilityScore),
			formatFloat(result.ConfidenceInterval.Low),
			formatFloat(result.ConfidenceInterval.High),
			formatFloat(result.MeanMetric),
			formatFloat(result.StdDevMetric),
			formatFloat(result.MedianMetric),
			strconv.Itoa(result.TrialCount),
			strconv.Itoa(result.FailedTrialCount),
			strconv.Itoa(result.InvalidDrawCount),
			result.RecommendedParameters.String(),
			strings.Join(result.Flags, ";"),
			result.Reason,
			fmt.Sprintf("%.3f", result.Elapsed.Seconds()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	summary := report.Summary
	summaryRow := make([]string, len(csvHeader))
	summaryRow[len(summaryRow)-1] = fmt.Sprintf(
		"SUMMARY: status=%s; mean_stability=%.6f; stable=%d; unstable=%d; completed=%d/%d",
		report.Status, summary.MeanStability, summary.StableCount,
		summary.UnstableCount, summary.CompletedCount, summary.TickerCount)
	if err := w.Write(summaryRow); err != nil {
		return err
	}

	return nil
}

// formatFloat renders metric values with stable precision
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
