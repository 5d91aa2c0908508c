package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"", false, true}, // default is info
		{"debug", true, true},
		{"warn", false, false},
		{"error", false, false},
	}
	for _, tt := range tests {
		t.Run("level="+tt.level, func(t *testing.T) {
			t.Setenv("NESREV_LOG_LEVEL", tt.level)
			var buf bytes.Buffer
			lg := NewLoggerWithWriter(&buf)
			lg.Debug("debug line")
			lg.Info("info line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v (output %q)", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "info line"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v (output %q)", got, tt.wantInfo, out)
			}
		})
	}
}

func TestPrefixFromEnv(t *testing.T) {
	t.Setenv("NESREV_LOG_LEVEL", "")
	t.Setenv("NESREV_LOG_PREFIX", "romcheck ")
	var buf bytes.Buffer
	lg := NewLoggerWithWriter(&buf)
	lg.Info("hello")
	if !strings.Contains(buf.String(), "romcheck") {
		t.Errorf("prefix missing from output %q", buf.String())
	}
}

func TestCloseWithoutCloser(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLoggerWithWriter(&buf)
	if err := lg.Close(); err != nil {
		t.Errorf("Close on a plain writer: %v", err)
	}
}

func TestIsDebug(t *testing.T) {
	t.Setenv("NESREV_LOG_LEVEL", "debug")
	if !IsDebug() {
		t.Error("IsDebug() = false with NESREV_LOG_LEVEL=debug")
	}
	t.Setenv("NESREV_LOG_LEVEL", "info")
	if IsDebug() {
		t.Error("IsDebug() = true with NESREV_LOG_LEVEL=info")
	}
}
