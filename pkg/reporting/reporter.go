package reporting

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/rnglab/param-robustness/internal/robustness"
)

// ReportingManager coordinates report output across all enabled formats.
type ReportingManager struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	json    *DefaultJSONReporter
	excel   *DefaultExcelReporter
	paths   *DefaultPathManager
	config  ReportingConfig
}

// NewReportingManager creates a reporting manager for the given configuration
func NewReportingManager(config ReportingConfig) *ReportingManager {
	return &ReportingManager{
		console: NewDefaultConsoleReporter(),
		csv:     NewDefaultCSVReporter(),
		json:    NewDefaultJSONReporter(),
		excel:   NewDefaultExcelReporter(),
		paths:   NewDefaultPathManager(),
		config:  config,
	}
}

// ReportAll renders the report in every enabled format. File formats share a
// single run directory named after the report start time; its path is
// returned so callers can tell the user where the artifacts landed. An empty
// path means no file format was enabled.
func (m *ReportingManager) ReportAll(report *robustness.PortfolioReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to output")
	}

	if m.config.Console {
		m.console.OutputReport(report)
	}

	if !m.config.CSV && !m.config.JSON && !m.config.Excel {
		return "", nil
	}

	runDir := m.paths.RunDir(m.config.Directory, report.StartedAt)

	if m.config.CSV {
		path := filepath.Join(runDir, "report.csv")
		if err := m.csv.WriteReport(report, path); err != nil {
			return runDir, fmt.Errorf("failed to write CSV report: %w", err)
		}
		log.Info().Str("path", path).Msg("Wrote CSV report")
	}

	if m.config.JSON {
		path := filepath.Join(runDir, "report.json")
		if err := m.json.WriteReport(report, path); err != nil {
			return runDir, fmt.Errorf("failed to write JSON report: %w", err)
		}
		log.Info().Str("path", path).Msg("Wrote JSON report")
	}

	if m.config.Excel {
		path := filepath.Join(runDir, "report.xlsx")
		if err := m.excel.WriteReport(report, path); err != nil {
			return runDir, fmt.Errorf("failed to write Excel report: %w", err)
		}
		log.Info().Str("path", path).Msg("Wrote Excel report")
	}

	return runDir, nil
}
