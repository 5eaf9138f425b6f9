package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger for console output at the given level
func Setup(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLevel(level))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// SetupWithFile configures console output plus a dated JSON log file under
// dir, so analysis sessions leave a machine-readable trail. The returned
// close function writes the session end entry and closes the file.
func SetupWithFile(level, dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := SessionLogPath(dir)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLevel(level))

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).With().Timestamp().Logger()

	log.Info().Str("path", path).Msg("Analysis session started")

	return func() {
		log.Info().Msg("Analysis session ended")
		file.Close()
	}, nil
}

// SessionLogPath returns the dated log file path under dir. Sessions on the
// same day append to the same file.
func SessionLogPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("robustness_%s.log", time.Now().Format("2006-01-02")))
}

// parseLevel maps a level name to a zerolog level, defaulting to info
func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
