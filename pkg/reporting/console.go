package reporting

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rnglab/param-robustness/internal/robustness"
)

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct {
	out io.Writer
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterWithWriter creates a console reporter with a custom writer
func NewConsoleReporterWithWriter(out io.Writer) *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: out}
}

// OutputReport prints the portfolio report to the console
func (r *DefaultConsoleReporter) OutputReport(report *robustness.PortfolioReport) {
	r.printSummary(report)
	r.printRanking(report)
	r.printRecommendations(report)
}

// printSummary prints the portfolio-level aggregate
func (r *DefaultConsoleReporter) printSummary(report *robustness.PortfolioReport) {
	summary := report.Summary

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("PORTFOLIO ROBUSTNESS")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Status", string(report.Status)},
		{"🧺 Tickers", fmt.Sprintf("%d (%d completed)", summary.TickerCount, summary.CompletedCount)},
		{"✅ Stable", summary.StableCount},
		{"⚠️ Unstable", summary.UnstableCount},
		{"📈 Mean Stability", fmt.Sprintf("%.4f", summary.MeanStability)},
		{"🎲 Simulations", fmt.Sprintf("%d per ticker (seed %d)", report.Config.NumSimulations, report.Config.Seed)},
		{"⏱️ Elapsed", report.Elapsed.Round(time.Millisecond).String()},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 30, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

// printRanking prints the descending stability ranking
func (r *DefaultConsoleReporter) printRanking(report *robustness.PortfolioReport) {
	results := resultsByTicker(report)
	ciLabel := fmt.Sprintf("%.0f%% CI", report.Config.ConfidenceLevel*100)

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("STABILITY RANKING")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Ticker", "Status", "Stability", ciLabel, "Mean", "Trials", "Failed"})

	for _, ranked := range report.Summary.RankedTickers {
		result, ok := results[ranked.Ticker]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{
			ranked.Rank,
			ranked.Ticker,
			statusMarker(result, report.Config.StabilityThreshold),
			fmt.Sprintf("%.4f", result.StabilityScore),
			fmt.Sprintf("[%.4f, %.4f]", result.ConfidenceInterval.Low, result.ConfidenceInterval.High),
			fmt.Sprintf("%.4f", result.MeanMetric),
			result.TrialCount,
			result.FailedTrialCount,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

// printRecommendations prints recommended parameters, or the failure reason
// for tickers that produced none
func (r *DefaultConsoleReporter) printRecommendations(report *robustness.PortfolioReport) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("RECOMMENDED PARAMETERS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Ticker", "Parameters"})

	for _, result := range report.PerTicker {
		if result.Status == robustness.TickerStatusCompleted {
			t.AppendRow(table.Row{result.Ticker, result.RecommendedParameters.String()})
			continue
		}
		reason := result.Reason
		if reason == "" {
			reason = string(result.Status)
		}
		t.AppendRow(table.Row{result.Ticker, reason})
	}

	t.Render()
	fmt.Fprintln(r.out)
}

// statusMarker decorates the status with a stability marker
func statusMarker(result robustness.TickerResult, threshold float64) string {
	switch result.Status {
	case robustness.TickerStatusCompleted:
		if result.IsStable(threshold) {
			return "✅ " + string(result.Status)
		}
		return "⚠️ " + string(result.Status)
	default:
		return "❌ " + string(result.Status)
	}
}

// resultsByTicker indexes per-ticker results for ranking lookups. Duplicate
// input tickers share one analysis, so first-wins is exact.
func resultsByTicker(report *robustness.PortfolioReport) map[string]robustness.TickerResult {
	results := make(map[string]robustness.TickerResult, len(report.PerTicker))
	for _, result := range report.PerTicker {
		if _, exists := results[result.Ticker]; !exists {
			results[result.Ticker] = result
		}
	}
	return results
}
