package internal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestHandler(buf *bytes.Buffer, opts Options) *Handler {
	opts.DisableTimestamp = true
	return NewHandler(opts, buf)
}

func TestHandler_Enabled(t *testing.T) {
	h := newTestHandler(&bytes.Buffer{}, Options{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf, Options{Level: slog.LevelInfo})

	logger := slog.New(h)
	logger.Info("hello", "count", 3)

	output := buf.String()
	if !strings.Contains(output, `msg="hello"`) || !strings.Contains(output, "count=3") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf, Options{Level: slog.LevelInfo})

	child := h.WithAttrs([]slog.Attr{slog.String("component", "idle")}).(*Handler)
	child.LogRecord(slog.LevelInfo, "tick", nil)

	if !strings.Contains(buf.String(), `component="idle"`) {
		t.Errorf("expected inherited attr, got: %s", buf.String())
	}
	if len(h.attrs) != 0 {
		t.Error("parent handler attrs must not change")
	}
}

func TestHandler_WithTimestamp(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(Options{Level: slog.LevelInfo}, &buf)
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	h.LogRecord(slog.LevelInfo, "tick", nil)

	if !strings.HasPrefix(buf.String(), "time=2026-01-02T03:04:05Z ") {
		t.Errorf("unexpected timestamp: %s", buf.String())
	}
}

func TestHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf, Options{Format: "json", Level: slog.LevelInfo, Service: "Service"})

	h.LogRecord(slog.LevelWarn, "slow", []slog.Attr{slog.Duration("elapsed", 1500*time.Millisecond)})

	output := buf.String()
	for _, want := range []string{`"level":"WARN"`, `"msg":"slow"`, `"service":"Service"`, `"elapsed":"1.5s"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in %s", want, output)
		}
	}
}

func TestSortAttrs(t *testing.T) {
	attrs := []slog.Attr{slog.String("b", "2"), slog.String("a", "1"), slog.String("c", "3")}
	sorted := SortAttrs(attrs)

	if sorted[0].Key != "a" || sorted[1].Key != "b" || sorted[2].Key != "c" {
		t.Errorf("unexpected order: %v", sorted)
	}
	if attrs[0].Key != "b" {
		t.Error("SortAttrs must not modify its input")
	}
}

func TestKVToAttrs(t *testing.T) {
	attrs := KVToAttrs([]any{[]any{"target", "broker"}, "attempt", 1})

	if len(attrs) != 2 {
		t.Fatalf("expected 2 attrs, got %d", len(attrs))
	}
	if attrs[0].Key != "target" || attrs[0].Value.String() != "broker" {
		t.Errorf("unexpected first attr: %v", attrs[0])
	}
	if attrs[1].Key != "attempt" || attrs[1].Value.Int64() != 1 {
		t.Errorf("unexpected second attr: %v", attrs[1])
	}
}

func TestKVToAttrs_OddCount(t *testing.T) {
	attrs := KVToAttrs([]any{"a", 1, "dangling"})
	if len(attrs) != 1 {
		t.Errorf("dangling key should be dropped, got %d attrs", len(attrs))
	}
}

func TestFormatValue(t *testing.T) {
	opts := Options{}
	tests := []struct {
		name  string
		value slog.Value
		want  string
	}{
		{"string", slog.StringValue("x"), `"x"`},
		{"int", slog.Int64Value(-4), "-4"},
		{"uint", slog.Uint64Value(4), "4"},
		{"whole float", slog.Float64Value(60), "60"},
		{"float", slog.Float64Value(1.25), "1.25"},
		{"bool", slog.BoolValue(true), "true"},
		{"duration", slog.DurationValue(90 * time.Second), `"1m30s"`},
		{"error", slog.AnyValue(errors.New("refused")), `"refused"`},
		{"slice", slog.AnyValue([]string{"b1:9092", "b2:9092"}), `"[b1:9092 b2:9092]"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue("k", tt.value, opts); got != tt.want {
				t.Errorf("FormatValue = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatValue_SensitiveField(t *testing.T) {
	opts := Options{SensitiveFields: []string{"Connection_String"}}
	got := FormatValue("connection_string", slog.StringValue("mongodb://u:p@h"), opts)
	if got != `"***REDACTED***"` {
		t.Errorf("expected redaction, got %s", got)
	}
}

func TestLevelString(t *testing.T) {
	tests := map[slog.Level]string{
		slog.LevelDebug: "DEBUG",
		slog.LevelInfo:  "INFO",
		slog.LevelWarn:  "WARN",
		slog.LevelError: "ERROR",
		slog.Level(2):   "LEVEL(2)",
	}
	for level, want := range tests {
		if got := LevelString(level); got != want {
			t.Errorf("LevelString(%v) = %s, want %s", level, got, want)
		}
	}
}

func TestColorizeLevel(t *testing.T) {
	if got := ColorizeLevel("ERROR"); got != "\033[31mERROR\033[0m" {
		t.Errorf("unexpected color: %q", got)
	}
	if got := ColorizeLevel("OTHER"); got != "OTHER" {
		t.Errorf("unknown levels must pass through, got %q", got)
	}
}

func TestHandler_Concurrency(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf, Options{Level: slog.LevelInfo})
	child := h.WithAttrs([]slog.Attr{slog.String("component", "broker")}).(*Handler)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.LogRecord(slog.LevelInfo, "parent", nil)
		}()
		go func() {
			defer wg.Done()
			child.LogRecord(slog.LevelInfo, "child", nil)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Fatalf("expected 100 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "level=INFO") {
			t.Fatalf("interleaved line: %q", line)
		}
	}
}
