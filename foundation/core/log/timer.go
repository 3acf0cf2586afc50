// File: timer.go
// Title: Operation Timer
// Description: Timer measuring one validation call or service request and
//              logging its duration on completion.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial timer implementation
// - 2026-10-17 v0.2.0: Duration carried on the entry, single shot stop

package log

import (
	"sync/atomic"
	"time"
)

// Timer logs "<operation> completed" or "<operation> failed" once
type Timer struct {
	logger    *Logger
	operation string
	start     time.Time
	fields    Fields
	level     Level
	stopped   atomic.Bool
}

// NewTimer starts a timer for operation. Completion is logged at debug
// level unless WithLevel says otherwise.
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		start:     time.Now(),
		fields:    Fields{"operation": operation},
		level:     LevelDebug,
	}
}

// WithLevel sets the level of the completion entry
func (t *Timer) WithLevel(level Level) *Timer {
	t.level = level
	return t
}

// WithField attaches key to the completion entry
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the time since the timer was started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop logs the elapsed time. Only the first Stop or StopWithError logs;
// later calls return zero.
func (t *Timer) Stop(fields ...Fields) time.Duration {
	return t.finish(t.level, " completed", nil, fields)
}

// StopWithError logs err at error level together with the elapsed time
func (t *Timer) StopWithError(err error, fields ...Fields) time.Duration {
	return t.finish(LevelError, " failed", err, append([]Fields{{"success": false}}, fields...))
}

func (t *Timer) finish(level Level, suffix string, err error, extra []Fields) time.Duration {
	if !t.stopped.CompareAndSwap(false, true) {
		return 0
	}
	elapsed := t.Elapsed()
	if t.logger != nil {
		t.logger.write(level, t.operation+suffix, err, elapsed, append([]Fields{t.fields}, extra...)...)
	}
	return elapsed
}
