package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvSource_Load(t *testing.T) {
	src := NewEnvSource(EnvOptions{Prefix: "APP_", Uppercase: true})
	src.environ = func() []string {
		return []string{"APP_port=8080", "OTHER=x", "APP_EMPTY=", "MALFORMED"}
	}

	values, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if values["PORT"] != "8080" {
		t.Errorf("PORT = %q", values["PORT"])
	}
	if _, ok := values["OTHER"]; ok {
		t.Error("unprefixed key must be skipped")
	}
	if v, ok := values["EMPTY"]; !ok || v != "" {
		t.Error("empty values are still reported by the source")
	}
	if len(values) != 2 {
		t.Errorf("unexpected values: %v", values)
	}
}

func TestEnvSource_ValueWithEquals(t *testing.T) {
	src := NewEnvSource(EnvOptions{})
	src.environ = func() []string {
		return []string{"MONGO_CONNECTION_STRING=mongodb://h/?w=majority"}
	}

	values, _ := src.Load(context.Background())
	if values["MONGO_CONNECTION_STRING"] != "mongodb://h/?w=majority" {
		t.Errorf("value = %q", values["MONGO_CONNECTION_STRING"])
	}
}

func TestDotenvSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "KAFKA_GROUP_ID=grpOpenTele\nexport DB_NAME=guests\nQUOTED=\"a b\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	values, err := NewDotenvSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := map[string]string{"KAFKA_GROUP_ID": "grpOpenTele", "DB_NAME": "guests", "QUOTED": "a b"}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("%s = %q, want %q", k, values[k], v)
		}
	}
}

func TestDotenvSource_EmptyPath(t *testing.T) {
	values, err := NewDotenvSource("").Load(context.Background())
	if err != nil || len(values) != 0 {
		t.Errorf("expected empty snapshot, got %v %v", values, err)
	}
}

func TestDotenvSource_DoesNotTouchEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("OPENTELE_DOTENV_ONLY=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewDotenvSource(path).Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := os.LookupEnv("OPENTELE_DOTENV_ONLY"); ok {
		t.Error("dotenv values must not leak into the process environment")
	}
}
