package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	mdwlog "github.com/msto63/formplan/foundation/core/log"
	"github.com/msto63/formplan/pkg/core/config"
)

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("my-service")

	if cfg.ServiceName != "my-service" {
		t.Errorf("ServiceName = %v, want my-service", cfg.ServiceName)
	}
	if cfg.Level != "info" {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %v, want json", cfg.Format)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level    string
		expected mdwlog.Level
	}{
		{"debug", mdwlog.LevelDebug},
		{"info", mdwlog.LevelInfo},
		{"warning", mdwlog.LevelWarn},
		{"error", mdwlog.LevelError},
		{"invalid", mdwlog.LevelInfo}, // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := DefaultLoggerConfig("test")
			cfg.Level = tt.level
			cfg.Output = &bytes.Buffer{}

			logger := NewLogger(cfg)
			if logger.GetLevel() != tt.expected {
				t.Errorf("GetLevel() = %v, want %v", logger.GetLevel(), tt.expected)
			}
		})
	}
}

func TestNewLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig("formplan")
	cfg.Output = &buf

	NewLogger(cfg).Info("catalog loaded", mdwlog.Fields{"forms": 2})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if !strings.Contains(buf.String(), "catalog loaded") {
		t.Errorf("message missing from %q", buf.String())
	}
}

func TestNewLogger_AdditionalOutputs(t *testing.T) {
	var primary, extra bytes.Buffer
	cfg := LoggerConfig{
		ServiceName:       "test",
		Level:             "info",
		Format:            "text",
		Output:            &primary,
		AdditionalOutputs: []io.Writer{&extra},
	}

	NewLogger(cfg).Warn("plan reload failed")

	if !strings.Contains(primary.String(), "plan reload failed") {
		t.Errorf("primary output = %q", primary.String())
	}
	if primary.String() != extra.String() {
		t.Errorf("outputs differ: %q vs %q", primary.String(), extra.String())
	}
}

func TestFromConfig(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() error = %v", err)
	}
	cfg.General.LogLevel = "error"

	logger, err := FromConfig(cfg, false)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if got := logger.GetLevel(); got != mdwlog.LevelError {
		t.Errorf("level = %v, want error", got)
	}

	logger, err = FromConfig(cfg, true)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if got := logger.GetLevel(); got != mdwlog.LevelDebug {
		t.Errorf("verbose level = %v, want debug", got)
	}
}

func TestFromConfig_LogFile(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() error = %v", err)
	}
	cfg.General.LogFile = filepath.Join(t.TempDir(), "logs", "formplan.log")

	logger, err := FromConfig(cfg, false)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	logger.Error("store unavailable")

	data, err := os.ReadFile(cfg.General.LogFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "store unavailable") {
		t.Errorf("log file = %q", data)
	}
}

func TestFromConfig_LogFileUnwritable(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() error = %v", err)
	}
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.General.LogFile = filepath.Join(blocker, "formplan.log")

	if _, err := FromConfig(cfg, false); !mdwerror.HasCode(err, mdwerror.CodeConfigError) {
		t.Errorf("FromConfig() error = %v, want CONFIG_ERROR", err)
	}
}
