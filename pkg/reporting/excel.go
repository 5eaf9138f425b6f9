package reporting

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rnglab/param-robustness/internal/robustness"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteReport writes the portfolio report as a styled workbook with a
// summary sheet and a per-ticker detail sheet.
func (r *DefaultExcelReporter) WriteReport(report *robustness.PortfolioReport, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Summary"
	const tickersSheet = "Tickers"

	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	fx.NewSheet(tickersSheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSummarySheet(fx, summarySheet, report, styles); err != nil {
		return err
	}
	if err := r.writeTickersSheet(fx, tickersSheet, report, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// createExcelStyles creates the workbook styles
func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	styles.TitleStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Family: "Calibri"},
	})
	if err != nil {
		return styles, err
	}

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.ScoreStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    2, // Number format with 2 decimal places
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.StableStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "006100"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.FailedStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	return styles, err
}

// writeSummarySheet writes the portfolio aggregate and the stability ranking
func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, report *robustness.PortfolioReport, styles ExcelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 24)
	fx.SetColWidth(sheet, "B", "B", 30)
	fx.SetColWidth(sheet, "C", "D", 14)

	fx.SetCellValue(sheet, "A1", "Portfolio Robustness Report")
	fx.SetCellStyle(sheet, "A1", "A1", styles.TitleStyle)

	summary := report.Summary
	rows := []struct {
		label string
		value interface{}
	}{
		{"Status", string(report.Status)},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05")},
		{"Elapsed", report.Elapsed.String()},
		{"Tickers", summary.TickerCount},
		{"Completed", summary.CompletedCount},
		{"Stable", summary.StableCount},
		{"Unstable", summary.UnstableCount},
		{"Mean Stability", summary.MeanStability},
		{"Simulations", report.Config.NumSimulations},
		{"Noise Fraction", report.Config.NoiseFraction},
		{"Confidence Level", report.Config.ConfidenceLevel},
		{"Seed", report.Config.Seed},
	}

	for i, row := range rows {
		labelCell := fmt.Sprintf("A%d", i+3)
		valueCell := fmt.Sprintf("B%d", i+3)
		fx.SetCellValue(sheet, labelCell, row.label)
		fx.SetCellStyle(sheet, labelCell, labelCell, styles.BaseStyle)
		fx.SetCellValue(sheet, valueCell, row.value)
		fx.SetCellStyle(sheet, valueCell, valueCell, styles.BaseStyle)
	}

	// Ranking block
	startRow := len(rows) + 5
	headers := []string{"Rank", "Ticker", "Stability", "Status"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c%d", 'A'+i, startRow)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}
	for i, ranked := range report.Summary.RankedTickers {
		row := startRow + 1 + i
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), ranked.Rank)
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), ranked.Ticker)
		fx.SetCellValue(sheet, fmt.Sprintf("C%d", row), ranked.StabilityScore)
		fx.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), styles.ScoreStyle)
		fx.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(ranked.Status))

		statusStyle := styles.BaseStyle
		if ranked.Status != robustness.TickerStatusCompleted {
			statusStyle = styles.FailedStyle
		}
		fx.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), styles.BaseStyle)
		fx.SetCellStyle(sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), statusStyle)
	}

	return nil
}

// writeTickersSheet writes the per-ticker detail table
func (r *DefaultExcelReporter) writeTickersSheet(fx *excelize.File, sheet string, report *robustness.PortfolioReport, styles ExcelStyles) error {
	headers := []string{
		"Ticker", "Status", "Stability", "CI Low", "CI High",
		"Mean", "StdDev", "Median", "Trials", "Failed",
		"Recommended Parameters", "Flags", "Reason",
	}

	fx.SetColWidth(sheet, "A", "B", 16)
	fx.SetColWidth(sheet, "C", "H", 12)
	fx.SetColWidth(sheet, "I", "J", 8)
	fx.SetColWidth(sheet, "K", "K", 34)
	fx.SetColWidth(sheet, "L", "M", 24)

	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	for i, result := range report.PerTicker {
		row := i + 2
		values := []interface{}{
			result.Ticker,
			string(result.Status),
			result.StabilityScore,
			result.ConfidenceInterval.Low,
			result.ConfidenceInterval.High,
			result.MeanMetric,
			result.StdDevMetric,
			result.MedianMetric,
			result.TrialCount,
			result.FailedTrialCount,
			result.RecommendedParameters.String(),
			strings.Join(result.Flags, "; "),
			result.Reason,
		}
		for j, v := range values {
			cell := fmt.Sprintf("%c%d", 'A'+j, row)
			fx.SetCellValue(sheet, cell, v)
			fx.SetCellStyle(sheet, cell, cell, styles.BaseStyle)
		}

		scoreRange := fmt.Sprintf("C%d", row)
		fx.SetCellStyle(sheet, scoreRange, fmt.Sprintf("H%d", row), styles.ScoreStyle)

		statusCell := fmt.Sprintf("B%d", row)
		switch {
		case result.IsStable(report.Config.StabilityThreshold):
			fx.SetCellStyle(sheet, statusCell, statusCell, styles.StableStyle)
		case result.Status != robustness.TickerStatusCompleted:
			fx.SetCellStyle(sheet, statusCell, statusCell, styles.FailedStyle)
		}
	}

	return nil
}
