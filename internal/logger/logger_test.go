package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/dmarkhas/renderdeploy-go/internal/ctxutil"
)

func parseLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v (line: %s)", err, line)
	}
	return entry
}

func TestNewWithWriter_JSONKeys(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithField("service", "deploy").Info("hello")

	entry := parseLine(t, buf.String())
	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["service"] != "deploy" {
		t.Errorf("service = %v, want deploy", entry["service"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp key missing")
	}
}

func TestWarnLevelRenamed(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Warn("careful")

	entry := parseLine(t, buf.String())
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want warning", entry["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter("error", &buf)

	log.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info record written despite error level: %s", buf.String())
	}

	log.Error("kept")
	if buf.Len() == 0 {
		t.Error("error record not written")
	}
}

func TestContextHandler_AddsTracingValues(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithRunID(context.Background(), "run-7")
	ctx = ctxutil.WithServiceID(ctx, "srv-7")
	log.InfoContext(ctx, "deploying")

	entry := parseLine(t, buf.String())
	if entry["run_id"] != "run-7" {
		t.Errorf("run_id = %v, want run-7", entry["run_id"])
	}
	if entry["service_id"] != "srv-7" {
		t.Errorf("service_id = %v, want srv-7", entry["service_id"])
	}
}

func TestMultiHandler_FanOut(t *testing.T) {
	t.Parallel()
	var buf1, buf2 bytes.Buffer
	h1 := slog.NewJSONHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := slog.NewJSONHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelError})

	log := slog.New(NewMultiHandler(h1, h2))
	log.Info("only first")

	if buf1.Len() == 0 {
		t.Error("first handler did not receive record")
	}
	if buf2.Len() != 0 {
		t.Error("second handler received record below its level")
	}

	log.Error("both")
	if !strings.Contains(buf2.String(), "both") {
		t.Error("second handler did not receive error record")
	}
}

func TestMultiHandler_SkipsNil(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, nil)

	m := NewMultiHandler(nil, h, nil)
	if len(m.handlers) != 1 {
		t.Errorf("expected 1 handler after filtering, got %d", len(m.handlers))
	}
}

func TestWithFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithFields(map[string]any{"a": "1", "b": "2"}).Info("fields")

	entry := parseLine(t, buf.String())
	if entry["a"] != "1" || entry["b"] != "2" {
		t.Errorf("fields not attached: %v", entry)
	}
}
