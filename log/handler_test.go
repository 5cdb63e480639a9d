package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestFormatterHandler_WritesThroughFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithFormatter(&JSONFormatter{}, slog.LevelInfo, &buf)

	logger.Info("listening", "port", 6074)

	out := buf.String()
	if !strings.Contains(out, `"msg":"listening"`) {
		t.Errorf("expected JSONFormatter output, got: %s", out)
	}
	if !strings.Contains(out, `"port":6074`) {
		t.Errorf("expected port field in output: %s", out)
	}
}

func TestFormatterHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithFormatter(&TextFormatter{}, slog.LevelWarn, &buf)

	logger.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered out, got: %s", buf.String())
	}

	logger.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("expected warn to pass the filter, got: %s", buf.String())
	}
}

func TestFormatterHandler_ModuleAttrsCarryThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithFormatter(&TextFormatter{}, slog.LevelInfo, &buf).Module("session")

	logger.Info("connection accepted", "remote", "127.0.0.1:1")

	out := buf.String()
	if !strings.Contains(out, "module=session") {
		t.Errorf("expected module attr in output: %s", out)
	}
	if !strings.Contains(out, "remote=127.0.0.1:1") {
		t.Errorf("expected remote attr in output: %s", out)
	}
}

func TestToSlogLevel(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  slog.Level
	}{
		{DEBUG, slog.LevelDebug},
		{INFO, slog.LevelInfo},
		{WARN, slog.LevelWarn},
		{ERROR, slog.LevelError},
		{FATAL, slog.LevelError},
	}
	for _, tt := range tests {
		if got := ToSlogLevel(tt.level); got != tt.want {
			t.Errorf("ToSlogLevel(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
