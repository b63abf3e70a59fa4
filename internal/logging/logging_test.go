package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatal("expected default logger")
	}
}

func TestStartSpanTagsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithLogger(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-1")

	ctx, parent := StartSpan(ctx, "parent")
	_, child := StartSpan(ctx, "child")
	child.End(errors.New("boom"))
	parent.End(nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var childEntry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &childEntry); err != nil {
		t.Fatalf("decode child entry: %v", err)
	}
	if childEntry["trace_id"] != "req-1" {
		t.Fatalf("expected request id as trace id, got %v", childEntry["trace_id"])
	}
	if childEntry["span_name"] != "child" || childEntry["parent_span_id"] == nil {
		t.Fatalf("unexpected child entry: %v", childEntry)
	}
	if childEntry["level"] != "WARN" {
		t.Fatalf("expected failed span at warn level, got %v", childEntry["level"])
	}
}
