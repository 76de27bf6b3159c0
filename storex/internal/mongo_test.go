package internal

import (
	"errors"
	"testing"

	"github.com/red2n/opentele/testingx"
)

func TestResolveDatabase(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		configured string
		want       string
	}{
		{"configured wins", "mongodb://h/fromuri", "guests", "guests"},
		{"uri path", "mongodb://h:27017/fromuri?retryWrites=true", "", "fromuri"},
		{"fallback", "mongodb://h:27017", "", DefaultDatabase},
		{"unparseable", "::not a uri::", "", DefaultDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDatabase(tt.uri, tt.configured); got != tt.want {
				t.Errorf("ResolveDatabase() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogSink(t *testing.T) {
	logger := testingx.NewMockLogger(t)
	sink := &logSink{logger: logger}

	kv := []any{"serverHost", "h"}
	sink.Info(1, "Server selection started", kv...)
	sink.Error(errors.New("no reachable servers"), "Server selection failed")

	logger.AssertLogged("DEBUG", "mongo: Server selection started")
	logger.AssertLogged("ERROR", "mongo: Server selection failed")

	entry := logger.Find("DEBUG", "Server selection started")[0]
	if v, _ := entry.Field("driver_level"); v != 1 {
		t.Errorf("driver_level = %v", v)
	}
	if len(kv) != 2 {
		t.Error("caller fields must not be modified")
	}
}
