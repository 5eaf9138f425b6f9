package reporting

import (
	"time"

	"github.com/rnglab/param-robustness/internal/robustness"
)

// Package reporting renders portfolio robustness reports to the console and
// to file artifacts.

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputReport(report *robustness.PortfolioReport)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteReport(report *robustness.PortfolioReport, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	RunDir(baseDir string, startedAt time.Time) string
	EnsureDirectoryExists(path string) error
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	TitleStyle  int
	HeaderStyle int
	BaseStyle   int
	ScoreStyle  int
	StableStyle int
	FailedStyle int
}

// ReportingConfig selects the destinations ReportAll writes to
type ReportingConfig struct {
	Directory string
	Console   bool
	CSV       bool
	JSON      bool
	Excel     bool
}
