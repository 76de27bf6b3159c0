package internal

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestApplySecurityHeaders_AllEnabled(t *testing.T) {
	w := httptest.NewRecorder()

	ApplySecurityHeaders(w, SecurityHeaders{
		ContentTypeOptions:    true,
		FrameOptions:          true,
		ReferrerPolicy:        true,
		StrictTransportSec:    true,
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	})

	want := map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"Referrer-Policy":           "no-referrer",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
		"Content-Security-Policy":   "default-src 'self'",
	}
	for k, v := range want {
		if got := w.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestApplySecurityHeaders_NoneEnabled(t *testing.T) {
	w := httptest.NewRecorder()
	ApplySecurityHeaders(w, SecurityHeaders{})

	if len(w.Header()) != 0 {
		t.Errorf("expected no headers, got %v", w.Header())
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 404: "4xx", 500: "5xx", 42: "unknown"}
	for status, want := range tests {
		if got := StatusClass(status); got != want {
			t.Errorf("StatusClass(%d) = %s, want %s", status, got, want)
		}
	}
}

func TestListDirectories(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"projects", "Documents", ".config"} {
		if err := os.Mkdir(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "projects"), filepath.Join(root, "linked")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling")); err != nil {
		t.Fatal(err)
	}

	got, err := ListDirectories(root)
	if err != nil {
		t.Fatalf("ListDirectories() error = %v", err)
	}

	want := []string{".config", "Documents", "linked", "projects"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListDirectories() = %v, want %v", got, want)
	}
}

func TestListDirectories_Empty(t *testing.T) {
	got, err := ListDirectories(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestListDirectories_Missing(t *testing.T) {
	if _, err := ListDirectories(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing root")
	}
}
