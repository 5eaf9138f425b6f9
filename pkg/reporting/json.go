package reporting

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rnglab/param-robustness/internal/robustness"
)

// DefaultJSONReporter implements JSON output functionality
type DefaultJSONReporter struct{}

// NewDefaultJSONReporter creates a new JSON reporter
func NewDefaultJSONReporter() *DefaultJSONReporter {
	return &DefaultJSONReporter{}
}

// FormatReport formats the report as indented JSON bytes
func (r *DefaultJSONReporter) FormatReport(report *robustness.PortfolioReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// PrintReport prints the report as JSON to stdout
func (r *DefaultJSONReporter) PrintReport(report *robustness.PortfolioReport) {
	data, err := r.FormatReport(report)
	if err != nil {
		fmt.Printf("failed to format report: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// WriteReport writes the report as an indented JSON file
func (r *DefaultJSONReporter) WriteReport(report *robustness.PortfolioReport, path string) error {
	data, err := r.FormatReport(report)
	if err != nil {
		return err
	}

	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
