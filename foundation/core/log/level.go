// File: level.go
// Title: Log Levels
// Description: Log levels of the engine and the service, with their names,
//              short tags and console colors.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation of log levels
// - 2026-10-17 v0.2.0: Table driven names, console colors via fatih/color

package log

import (
	"strings"

	"github.com/fatih/color"
)

// Level represents the importance level of a log message
type Level int

const (
	// LevelTrace adds the arguments of every dispatched step
	LevelTrace Level = iota

	// LevelDebug logs gate decisions and step outcomes
	LevelDebug

	// LevelInfo logs completed validation calls
	LevelInfo

	// LevelWarn logs conditions that need attention
	LevelWarn

	// LevelError logs failed calls and plan errors
	LevelError

	// LevelOff disables logging
	LevelOff
)

type levelInfo struct {
	name    string
	tag     string
	aliases []string
	color   *color.Color
}

var levels = [...]levelInfo{
	LevelTrace: {"trace", "TRC", []string{"trc"}, color.New(color.FgHiBlack)},
	LevelDebug: {"debug", "DBG", []string{"dbg"}, color.New(color.FgCyan)},
	LevelInfo:  {"info", "INF", []string{"inf", ""}, color.New(color.FgGreen)},
	LevelWarn:  {"warn", "WRN", []string{"wrn", "warning"}, color.New(color.FgYellow)},
	LevelError: {"error", "ERR", []string{"err"}, color.New(color.FgRed, color.Bold)},
	LevelOff:   {"off", "OFF", []string{"none"}, color.New(color.Reset)},
}

func (l Level) info() (levelInfo, bool) {
	if l < LevelTrace || l > LevelOff {
		return levelInfo{}, false
	}
	return levels[l], true
}

// String returns the configuration name of the level
func (l Level) String() string {
	if info, ok := l.info(); ok {
		return info.name
	}
	return "unknown"
}

// ShortString returns the three letter tag used by the text format
func (l Level) ShortString() string {
	if info, ok := l.info(); ok && l != LevelOff {
		return info.tag
	}
	return "???"
}

// Colorize renders s in the console color of the level
func (l Level) Colorize(s string) string {
	if info, ok := l.info(); ok {
		return info.color.Sprint(s)
	}
	return s
}

// Enabled returns true if this level passes the given minimum level
func (l Level) Enabled(minLevel Level) bool {
	return minLevel != LevelOff && l >= minLevel
}

// ParseLevel parses a configuration string. Unknown input yields
// LevelInfo together with a *ParseError.
func ParseLevel(level string) (Level, error) {
	want := strings.ToLower(strings.TrimSpace(level))
	for l, info := range levels {
		if want == info.name {
			return Level(l), nil
		}
		for _, alias := range info.aliases {
			if want == alias {
				return Level(l), nil
			}
		}
	}
	return LevelInfo, &ParseError{Input: level, Type: "level"}
}

// ParseError reports an unknown level or format name
type ParseError struct {
	Input string
	Type  string
}

func (e *ParseError) Error() string {
	return "invalid " + e.Type + ": " + e.Input
}
