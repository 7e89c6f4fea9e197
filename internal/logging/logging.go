package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"langprune/internal/config"
)

const prefix = "langprune: "

// New creates a stderr-only logger
func New() *log.Logger {
	return NewWithConfig(nil)
}

// NewWithConfig creates a logger that writes to stderr and, when
// cfg.Logging.File is set, appends to that file after rotating it if it is
// older than the configured number of days.
func NewWithConfig(cfg *config.Config) *log.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is NewWithConfig with the console writer supplied
func NewWithWriter(cfg *config.Config, console io.Writer) *log.Logger {
	flags := log.LstdFlags | log.Lmicroseconds
	if cfg == nil || cfg.Logging.File == "" {
		return log.New(console, prefix, flags)
	}

	filePath := cfg.Logging.File
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		log.Printf("failed to ensure log directory for %s: %v", filePath, err)
	}

	rotateDays := 30
	if cfg.Logging.RotationDays > 0 {
		rotateDays = cfg.Logging.RotationDays
	}
	rotateLogsIfNeeded(filePath, rotateDays, time.Now())

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("failed to open log file %s: %v", filePath, err)
		return log.New(console, prefix, flags)
	}

	return log.New(io.MultiWriter(console, f), prefix, flags)
}

// rotateLogsIfNeeded renames the log aside once it is older than rotationDays
func rotateLogsIfNeeded(logPath string, rotationDays int, now time.Time) {
	info, err := os.Stat(logPath)
	if err != nil {
		return
	}

	cutoff := now.AddDate(0, 0, -rotationDays)
	if !info.ModTime().Before(cutoff) {
		return
	}

	rotatedPath := logPath + "." + info.ModTime().Format("20060102-150405")
	if err := os.Rename(logPath, rotatedPath); err != nil {
		log.Printf("failed to rotate log file: %v", err)
		return
	}

	cleanupOldLogs(logPath, cutoff)
}

// cleanupOldLogs removes rotated siblings last modified before cutoff
func cleanupOldLogs(logPath string, cutoff time.Time) {
	dir := filepath.Dir(logPath)
	base := filepath.Base(logPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), base+".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			fullPath := filepath.Join(dir, entry.Name())
			if err := os.Remove(fullPath); err != nil {
				log.Printf("failed to remove old log file %s: %v", fullPath, err)
			}
		}
	}
}
