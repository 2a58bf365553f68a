package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: "api", Output: &buf, JSON: true})

	l.Info("request failed", "status", 500)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if rec["component"] != "api" {
		t.Fatalf("component = %v, want api", rec["component"])
	}
	if rec["status"] != float64(500) {
		t.Fatalf("status = %v, want 500", rec["status"])
	}
}

func TestWithComponentOverrides(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: "root", Output: &buf})
	sub := l.WithComponent("daemon")

	if sub.Component() != "daemon" {
		t.Fatalf("Component() = %q", sub.Component())
	}
	sub.Info("poll")
	if !strings.Contains(buf.String(), "component=daemon") {
		t.Fatalf("missing component attr in %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatal("warn should be emitted")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":  slog.LevelDebug,
		" INFO ": slog.LevelInfo,
		"error":  slog.LevelError,
		"warn":   slog.LevelWarn,
		"bogus":  slog.LevelWarn,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
