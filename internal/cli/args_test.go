package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tis24dev/backupmon/internal/types"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected types.LogLevel
	}{
		{"debug string", "debug", types.LogLevelDebug},
		{"debug number", "5", types.LogLevelDebug},
		{"info string", "info", types.LogLevelInfo},
		{"info number", "4", types.LogLevelInfo},
		{"warning string", "warning", types.LogLevelWarning},
		{"warning number", "3", types.LogLevelWarning},
		{"error string", "error", types.LogLevelError},
		{"error number", "2", types.LogLevelError},
		{"critical string", "critical", types.LogLevelCritical},
		{"critical number", "1", types.LogLevelCritical},
		{"none string", "none", types.LogLevelNone},
		{"none number", "0", types.LogLevelNone},
		{"unknown", "invalid", types.LogLevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.expected {
				t.Fatalf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPrintHelpMentionsOptions(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf, "backupmon")

	out := buf.String()
	for _, want := range []string{"Usage: backupmon", "Options:", "--dry-run"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintVersionIncludesVersionString(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf)

	if !strings.Contains(buf.String(), "Version:") {
		t.Errorf("version output = %q", buf.String())
	}
}
