package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// RunDir returns the per-run output directory under baseDir, named by the
// run start time.
func (p *DefaultPathManager) RunDir(baseDir string, startedAt time.Time) string {
	return filepath.Join(baseDir, fmt.Sprintf("robustness_%s", startedAt.Format("20060102_150405")))
}

// EnsureDirectoryExists creates the parent directory of path if needed
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
