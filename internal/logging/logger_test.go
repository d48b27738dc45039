package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/tis24dev/backupmon/internal/types"
)

func TestNew(t *testing.T) {
	logger := New(types.LogLevelInfo, true)

	if logger.level != types.LogLevelInfo {
		t.Errorf("Expected level %v, got %v", types.LogLevelInfo, logger.level)
	}
	if !logger.useColor {
		t.Error("Expected useColor to be true")
	}
	if logger.output == nil {
		t.Error("Expected output to be set")
	}
}

func TestSetLevel(t *testing.T) {
	logger := New(types.LogLevelInfo, false)

	logger.SetLevel(types.LogLevelDebug)

	if logger.GetLevel() != types.LogLevelDebug {
		t.Errorf("Expected level %v, got %v", types.LogLevelDebug, logger.GetLevel())
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(types.LogLevelWarning, false)
	logger.SetOutput(&buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warning("warning message")
	logger.Error("error message")

	output := buf.String()

	if strings.Contains(output, "debug message") {
		t.Error("Debug message should not appear when level is WARNING")
	}
	if strings.Contains(output, "info message") {
		t.Error("Info message should not appear when level is WARNING")
	}
	if !strings.Contains(output, "warning message") {
		t.Error("Warning message should appear when level is WARNING")
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error message should appear when level is WARNING")
	}
}

func TestWarningErrorCounters(t *testing.T) {
	logger := New(types.LogLevelDebug, false)
	logger.SetOutput(&bytes.Buffer{})

	if logger.HasWarnings() || logger.HasErrors() {
		t.Fatal("fresh logger should have no warnings or errors")
	}

	logger.Warning("w")
	if !logger.HasWarnings() {
		t.Error("HasWarnings() = false after Warning")
	}

	logger.Error("e")
	if !logger.HasErrors() {
		t.Error("HasErrors() = false after Error")
	}
}

func TestPhaseStepSkipLabels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(types.LogLevelInfo, false)
	logger.SetOutput(&buf)

	logger.Phase("metrics store")
	logger.Step("installing packages")
	logger.Skip("already running")

	output := buf.String()
	for _, label := range []string{"PHASE", "STEP", "SKIP"} {
		if !strings.Contains(output, label) {
			t.Errorf("output missing %s label: %q", label, output)
		}
	}
}

func TestFatalUsesExitFunc(t *testing.T) {
	logger := New(types.LogLevelInfo, false)
	logger.SetOutput(&bytes.Buffer{})

	var code int
	logger.SetExitFunc(func(c int) { code = c })

	logger.Fatal(types.ExitFailure, "fatal: %s", "boom")

	if code != types.ExitFailure.Int() {
		t.Errorf("exit code = %d; want %d", code, types.ExitFailure.Int())
	}
}

func TestOpenLogFile(t *testing.T) {
	logger := New(types.LogLevelInfo, false)
	logger.SetOutput(&bytes.Buffer{})

	path := t.TempDir() + "/bootstrap.log"
	if err := logger.OpenLogFile(path); err != nil {
		t.Fatalf("OpenLogFile() error = %v", err)
	}
	logger.Info("hello file")
	if err := logger.CloseLogFile(); err != nil {
		t.Fatalf("CloseLogFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Errorf("log file missing message, got %q", data)
	}
}
