package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_jsonIncludesAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", FormatJSON).WithPackage("pkg-a").WithStage("publish")
	log.Info("bumping pkg-a with minor", "version", "0.6.0")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parsing log line: %v", err)
	}
	if entry["msg"] != "bumping pkg-a with minor" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["pkg"] != "pkg-a" || entry["stage"] != "publish" || entry["version"] != "0.6.0" {
		t.Errorf("missing attributes: %v", entry)
	}
}

func TestNew_levelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", FormatJSON)
	log.Info("hidden")
	log.Debug("hidden")
	log.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info/debug should be filtered: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn should be logged: %s", buf.String())
	}
}

func TestNew_console(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", FormatConsole).With("pkg", "pkg-b")
	log.Info("dryRun >> pkg-b [publish]: npm publish")
	log.Error("boom")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "dryRun >> pkg-b [publish]: npm publish") {
		t.Errorf("info line = %q", lines[0])
	}
	if !strings.Contains(lines[0], "pkg=pkg-b") {
		t.Errorf("info line missing attribute: %q", lines[0])
	}
	if !strings.Contains(lines[1], "error") || !strings.Contains(lines[1], "boom") {
		t.Errorf("error line = %q", lines[1])
	}
}

func TestNopLogger(t *testing.T) {
	log := NopLogger()
	log.Error("nothing")
	log.With("a", 1).Info("nothing")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
