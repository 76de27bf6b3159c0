package log

import (
	"errors"
	"testing"
	"time"
)

func assertPair(t *testing.T, kv any, wantKey string, wantValue any) {
	t.Helper()
	slice, ok := kv.([]any)
	if !ok {
		t.Fatalf("expected []any, got %T", kv)
	}
	if len(slice) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(slice))
	}
	if slice[0] != wantKey || slice[1] != wantValue {
		t.Fatalf("expected [%q, %v], got %v", wantKey, wantValue, slice)
	}
}

func TestStr(t *testing.T) {
	assertPair(t, Str("target", "document store"), "target", "document store")
}

func TestInt(t *testing.T) {
	assertPair(t, Int("partition", 3), "partition", 3)
}

func TestDur(t *testing.T) {
	assertPair(t, Dur("deadline", 30*time.Second), "deadline", 30*time.Second)
}

func TestAny(t *testing.T) {
	brokers := []string{"b1:9092"}
	kv := Any("brokers", brokers)
	slice, ok := kv.([]any)
	if !ok || len(slice) != 2 || slice[0] != "brokers" {
		t.Fatalf("unexpected pair: %v", kv)
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	if logger.With("k", "v") == nil {
		t.Fatal("With on nop logger should not return nil")
	}

	// Must not panic.
	logger.Debug("debug")
	logger.Info("info", Str("k", "v"))
	logger.Warn("warn")
	logger.Error(errors.New("boom"), "error")
	logger.Error(nil, "error without cause")
}
