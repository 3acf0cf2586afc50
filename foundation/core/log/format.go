// File: format.go
// Title: Log Formatters
// Description: JSON, text and console formatters turning entries into
//              output lines.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with JSON, text, console, logfmt
// - 2026-10-17 v0.2.0: Removed logfmt, sorted text fields, colored level tag

package log

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format represents the output format for log messages
type Format int

const (
	// FormatJSON writes one JSON object per line
	FormatJSON Format = iota

	// FormatText writes "time [TAG] {logger} message [k=v ...]" lines
	FormatText

	// FormatConsole is FormatText with a colored level tag
	FormatConsole
)

var formatNames = map[Format]string{
	FormatJSON:    "json",
	FormatText:    "text",
	FormatConsole: "console",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat parses a configuration string; "" selects JSON
func ParseFormat(format string) (Format, error) {
	want := strings.ToLower(strings.TrimSpace(format))
	if want == "" {
		return FormatJSON, nil
	}
	for f, name := range formatNames {
		if name == want {
			return f, nil
		}
	}
	return FormatJSON, &ParseError{Input: format, Type: "format"}
}

// Formatter turns an entry into one output line
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// JSONFormatter formats log entries as single-line JSON objects
type JSONFormatter struct {
	TimestampFormat string
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{TimestampFormat: time.RFC3339}
}

// Format encodes entry. Entry fields never shadow the reserved keys.
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+7)
	for k, v := range entry.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}

	data["timestamp"] = entry.Timestamp.Format(f.TimestampFormat)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message
	setIf(data, "logger", entry.Logger)
	setIf(data, "request_id", entry.RequestID)

	if entry.Error != nil {
		data["error"] = entry.Error.Error()
		// mdw errors carry code, operation and details
		if m, ok := entry.Error.(json.Marshaler); ok {
			if raw, err := m.MarshalJSON(); err == nil {
				data["error_details"] = json.RawMessage(raw)
			}
		}
	}
	if entry.Duration > 0 {
		data["duration_ms"] = float64(entry.Duration.Nanoseconds()) / 1e6
	}

	line, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

func setIf(data map[string]interface{}, key, value string) {
	if value != "" {
		data[key] = value
	}
}

// TextFormatter formats log entries as human-readable text
type TextFormatter struct {
	TimestampFormat  string
	DisableTimestamp bool

	tag func(Level) string
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{TimestampFormat: "15:04:05"}
}

// Format renders entry with its fields sorted by key
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b strings.Builder

	if !f.DisableTimestamp {
		b.WriteString(entry.Timestamp.Format(f.TimestampFormat))
		b.WriteByte(' ')
	}

	tag := "[" + entry.Level.ShortString() + "]"
	if f.tag != nil {
		tag = f.tag(entry.Level)
	}
	b.WriteString(tag)

	if entry.Logger != "" {
		fmt.Fprintf(&b, " {%s}", entry.Logger)
	}
	if entry.RequestID != "" {
		fmt.Fprintf(&b, " (req=%s)", entry.RequestID)
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		b.WriteString(" [")
		for i, k := range entry.Fields.Keys() {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%v", k, entry.Fields[k])
		}
		b.WriteByte(']')
	}
	if entry.Error != nil {
		fmt.Fprintf(&b, " error=%q", entry.Error.Error())
	}
	if entry.Duration > 0 {
		fmt.Fprintf(&b, " duration=%s", entry.Duration)
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// ConsoleFormatter is a TextFormatter with the level tag colored.
// Colors follow color.NoColor, so they vanish when output is not a tty.
type ConsoleFormatter struct {
	*TextFormatter
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	text := NewTextFormatter()
	text.tag = func(l Level) string {
		return l.Colorize("[" + l.ShortString() + "]")
	}
	return &ConsoleFormatter{TextFormatter: text}
}

// GetFormatter returns a formatter for the specified format
func GetFormatter(format Format) Formatter {
	switch format {
	case FormatText:
		return NewTextFormatter()
	case FormatConsole:
		return NewConsoleFormatter()
	default:
		return NewJSONFormatter()
	}
}
