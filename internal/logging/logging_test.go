package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if result := tt.level.String(); result != tt.expected {
			t.Errorf("Level(%d).String() = '%s', expected '%s'", tt.level, result, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{" error ", LevelError},
		{"unknown", LevelInfo}, // Default
		{"", LevelInfo},        // Default
	}

	for _, tt := range tests {
		if result := ParseLevel(tt.input); result != tt.expected {
			t.Errorf("ParseLevel('%s') = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "warn", "warning", "error"} {
		if !ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "trace", "fatal"} {
		if ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = true, want false", s)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf, Prefix: "test"})

	l.Debug("debug message")
	l.Info("info message")
	if buf.Len() != 0 {
		t.Errorf("messages below level were written: %q", buf.String())
	}

	l.Warn("warn %d", 42)
	out := buf.String()
	if !strings.Contains(out, "[WARN] test: warn 42") {
		t.Errorf("output = %q, want WARN line with prefix", out)
	}
}

func TestLogger_WithFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	l.WithFields(map[string]any{"zeta": 1, "alpha": "x"}).WithComponent("capture").Info("hello")

	out := buf.String()
	if !strings.Contains(out, "hello {alpha=x, component=capture, zeta=1}") {
		t.Errorf("output = %q, want sorted fields", out)
	}
	if strings.Contains(out, ": hello") {
		t.Errorf("output = %q, empty prefix should not be written", out)
	}
}

func TestLogger_DerivedSharesSink(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Config{Level: LevelInfo, Output: &buf})
	child := parent.WithComponent("web")

	parent.SetLevel(LevelError)
	child.Info("hidden")
	if buf.Len() != 0 {
		t.Error("child should follow parent's level")
	}

	var other bytes.Buffer
	parent.SetOutput(&other)
	child.Error("shown")
	if !strings.Contains(other.String(), "shown") {
		t.Error("child should follow parent's output")
	}
	if parent.Level() != LevelError {
		t.Errorf("Level() = %v, want ERROR", parent.Level())
	}
}

func TestLogger_WithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Config{Level: LevelInfo, Output: &buf})
	_ = parent.WithField("recorder", "abc")

	parent.Info("plain")
	if strings.Contains(buf.String(), "recorder") {
		t.Errorf("parent logger picked up child field: %q", buf.String())
	}
}

func TestLogger_DisableEnable(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	l.Disable()
	if l.Enabled(LevelError) {
		t.Error("Enabled() should be false when disabled")
	}
	l.Error("nope")
	if buf.Len() != 0 {
		t.Error("disabled logger wrote output")
	}

	l.Enable()
	if !l.Enabled(LevelDebug) {
		t.Error("Enabled(Debug) should be true at debug level")
	}
	l.Error("yes")
	if buf.Len() == 0 {
		t.Error("enabled logger wrote nothing")
	}
}

func TestNull(t *testing.T) {
	l := Null()
	if l.Enabled(LevelError) {
		t.Error("Null logger should be disabled")
	}
	l.Error("discarded")
}

func TestSetGet(t *testing.T) {
	orig := Get()
	defer Set(orig)

	custom := Null()
	Set(custom)
	if Get() != custom {
		t.Error("Get() should return the logger passed to Set")
	}
	if OrDefault(nil) != custom {
		t.Error("OrDefault(nil) should return the process-wide logger")
	}
	other := Null()
	if OrDefault(other) != other {
		t.Error("OrDefault(l) should return l")
	}
}
