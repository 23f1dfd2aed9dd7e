// Package logging configures the process-wide zerolog logger: human-readable
// console output plus a per-run log file under log/<YYYYMMDD>/.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup initializes the global logger. It returns a closer for the log file;
// callers defer it for the lifetime of the process.
func Setup(verbose bool) (io.Closer, error) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	now := time.Now().UTC()
	dir := filepath.Join("log", now.Format("20060102"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.Create(filepath.Join(dir, now.Format("15-04-05")+".log"))
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).With().Timestamp().Logger()

	return file, nil
}
