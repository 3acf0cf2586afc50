// Package log provides structured logging for formplan.
//
// Package: log
// Title: Structured Logging
// Description: Leveled logger with immutable context (name, request id,
//              fields), JSON/text/console formatters, timers, and severity
//              aware logging of *mdwerror.Error values.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-17 v0.2.0: Synchronous writer, audit level and logfmt removed
//
// Usage:
//
//	logger := log.NewWithConfig(log.Config{Level: log.LevelDebug, Format: log.FormatText})
//	stepLog := logger.WithName("validation").WithField("form", "signup")
//	stepLog.Debug("step skipped", log.Fields{"field": "dates", "missing": 1})
//
//	timer := stepLog.StartTimer("validate")
//	defer timer.Stop()
package log
