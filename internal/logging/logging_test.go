package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		got := ParseLevel(tt.input)
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMachineOutputHandlerIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.Warn("business source unavailable", "source", "redshift")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v\noutput: %s", err, buf.String())
	}
	if m["msg"] != "business source unavailable" {
		t.Errorf("expected msg, got %q", m["msg"])
	}
	if m["source"] != "redshift" {
		t.Errorf("expected source attr, got %q", m["source"])
	}
}

func TestInteractiveHandlerIsText(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.Info("report delivered", "channel", "#ops")

	out := buf.String()
	if !strings.Contains(out, "msg=\"report delivered\"") {
		t.Errorf("expected text output containing msg, got: %s", out)
	}
	if !strings.Contains(out, "channel=#ops") {
		t.Errorf("expected text output containing channel attr, got: %s", out)
	}
}
