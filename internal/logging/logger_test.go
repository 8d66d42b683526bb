package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zapcore.Level
	}{
		{raw: "", want: zapcore.InfoLevel},
		{raw: "debug", want: zapcore.DebugLevel},
		{raw: " WARN ", want: zapcore.WarnLevel},
		{raw: "warning", want: zapcore.WarnLevel},
		{raw: "error", want: zapcore.ErrorLevel},
		{raw: "verbose", want: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.raw); got != tt.want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestLoggerWritesJSONAtConfiguredLevel(t *testing.T) {
	var console bytes.Buffer
	logger, err := newLogger(Options{Level: "warn"}, &console)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("check-in persisted late", zap.String("period", "morning"))
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(console.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), console.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["level"] != "warn" || entry["msg"] != "check-in persisted late" || entry["period"] != "morning" {
		t.Fatalf("unexpected entry %#v", entry)
	}
}

func TestLoggerWritesRollingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dailyglow.log")
	logger, err := newLogger(Options{Path: path}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("streak milestone reached")
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "streak milestone reached") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}
