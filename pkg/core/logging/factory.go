// ============================================================================
// formplan - Declarative form validation
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating foundation loggers from the
//              application configuration
// Author:      msto63
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"path/filepath"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	mdwlog "github.com/msto63/formplan/foundation/core/log"
	"github.com/msto63/formplan/pkg/core/config"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error, off)
	Level string

	// Output format: "json", "text" or "console" (default: json)
	Format string

	// Primary output (default: stderr)
	Output io.Writer

	// Outputs receiving a copy of every entry, e.g. the log file
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// NewLogger creates a new foundation logger. Unknown levels and formats
// fall back to info and json.
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	level, _ := mdwlog.ParseLevel(cfg.Level)
	format, _ := mdwlog.ParseFormat(cfg.Format)

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:  level,
		Format: format,
		Output: output,
		Name:   cfg.ServiceName,
	})
}

// FromConfig creates the application logger from the general section.
// verbose forces debug level. A configured log_file receives a copy of
// every entry; it stays open for the life of the process.
func FromConfig(cfg *config.Config, verbose bool) (*mdwlog.Logger, error) {
	lc := DefaultLoggerConfig(cfg.General.Name)
	lc.Level = cfg.General.LogLevel
	lc.Format = cfg.General.LogFormat
	if verbose {
		lc.Level = "debug"
	}

	if path := cfg.General.LogFile; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, logFileError(err, path)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, logFileError(err, path)
		}
		lc.AdditionalOutputs = append(lc.AdditionalOutputs, f)
	}
	return NewLogger(lc), nil
}

func logFileError(err error, path string) error {
	return mdwerror.Wrap(err, "open log file").
		WithCode(mdwerror.CodeConfigError).
		WithOperation("logging.FromConfig").
		WithDetail("path", path)
}
