package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestSlogLogger_LevelsWriteExpectedOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewText(&buf, "debug")
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		attr  string
	}{
		{"DEBUG", "dbg", "a=1"},
		{"INFO", "inf", "b=2"},
		{"WARN", "wrn", "c=3"},
		{"ERROR", "err", "d=4"},
	}

	for _, tc := range tests {
		if !strings.Contains(out, "level="+tc.level) {
			t.Fatalf("expected line with level=%s in output:\n%s", tc.level, out)
		}
		if !strings.Contains(out, "msg="+tc.msg) {
			t.Fatalf("expected line with msg=%q in output:\n%s", tc.msg, out)
		}
		if !strings.Contains(out, tc.attr) {
			t.Fatalf("expected attribute %s in output:\n%s", tc.attr, out)
		}
	}
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewText(&buf, "warn")
	ctx := context.Background()

	log.Info(ctx, "hidden")
	log.Warn(ctx, "visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered at warn level:\n%s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line missing:\n%s", out)
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewText(&buf, "info")

	child := log.With("component", "cart")
	child.Info(context.Background(), "pushed")

	if !strings.Contains(buf.String(), "component=cart") {
		t.Fatalf("expected component attribute in output:\n%s", buf.String())
	}
}

func TestZerologLogger_EmitsJSONWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, "info")

	log.With("component", "session").Info(context.Background(), "refreshed", "ok", true)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if rec["message"] != "refreshed" {
		t.Fatalf("unexpected message: %v", rec["message"])
	}
	if rec["component"] != "session" {
		t.Fatalf("expected component attribute, got: %v", rec)
	}
	if rec["ok"] != true {
		t.Fatalf("expected ok attribute, got: %v", rec)
	}
}

func TestZerologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, "error")

	log.Debug(context.Background(), "nope")
	log.Info(context.Background(), "nope")

	if buf.Len() != 0 {
		t.Fatalf("expected no output below error level, got:\n%s", buf.String())
	}
}
