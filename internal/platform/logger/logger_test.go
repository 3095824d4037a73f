package logger

import (
	"testing"

	"github.com/ogurasousui/talent-guard/internal/platform/config"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	logger, err := New(config.LogConfig{Level: "warn"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info must be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error must be enabled at warn level")
	}
}

func TestNew_Development(t *testing.T) {
	t.Parallel()

	logger, err := New(config.LogConfig{Level: "debug", Development: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug must be enabled")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(config.LogConfig{Level: "verbose"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
