package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestError_IncludesErrAndFields(t *testing.T) {
	buf := capture(t, LevelInfo)

	Error("flush failed", errors.New("bus timeout"), "area", "(0,0)-(240,40)", "dangling")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	want := map[string]any{
		"level":   "error",
		"message": "flush failed",
		"error":   "bus timeout",
		"area":    "(0,0)-(240,40)",
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
	if _, ok := rec["dangling"]; ok {
		t.Error("odd trailing key should be dropped")
	}
}

func TestSetLevel_Filters(t *testing.T) {
	buf := capture(t, LevelWarn)

	Debug("hidden")
	Info("hidden")
	Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "shown") {
		t.Errorf("got lines %q, want only the warning", lines)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"DEBUG":   LevelDebug,
		"debug":   LevelDebug,
		"WARN":    LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
