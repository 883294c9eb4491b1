package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/simple-finance/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
		wantErr  bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"trace", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		config   config.LoggingConfig
		override string
		enabled  zapcore.Level
		disabled zapcore.Level
	}{
		{"Defaults to info", config.LoggingConfig{}, "", zapcore.InfoLevel, zapcore.DebugLevel},
		{"Config level", config.LoggingConfig{Level: "warn", Format: "console"}, "", zapcore.WarnLevel, zapcore.InfoLevel},
		{"Override wins", config.LoggingConfig{Level: "error"}, "debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config, tt.override)
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}
			if !logger.Core().Enabled(tt.enabled) {
				t.Errorf("expected %v to be enabled", tt.enabled)
			}
			if logger.Core().Enabled(tt.disabled) {
				t.Errorf("expected %v to be disabled", tt.disabled)
			}
		})
	}
}

func TestNewLoggerErrors(t *testing.T) {
	if _, err := NewLogger(config.LoggingConfig{Level: "loud"}, ""); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := NewLogger(config.LoggingConfig{Format: "xml"}, ""); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestNewLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "simple-finance.log")
	logger, err := NewLogger(config.LoggingConfig{OutputFile: path}, "")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Info("written to file")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected log output in file")
	}
}
