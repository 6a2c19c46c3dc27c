package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	logger, err := NewLogger("chatty", "")
	if err != nil {
		t.Fatal(err)
	}

	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info must be enabled")
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("unknown level must not enable debug")
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, err := NewLogger("debug", path)
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("server ready")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "server ready") {
		t.Errorf("log record missing from file: %q", string(data))
	}
}
