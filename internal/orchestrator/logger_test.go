package orchestrator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDebugLoggerWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := NewDebugLogger(path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer logger.Close()

	logger.Log("worker %s spawned", "w-1")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "worker w-1 spawned") {
		t.Errorf("log file missing message, got: %s", data)
	}
}

// SetEnabled silences and resumes logging without reopening the file.
func TestDebugLoggerToggle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := NewDebugLogger(path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer logger.Close()

	logger.SetEnabled(false)
	logger.Log("hidden message")
	logger.SetEnabled(true)
	logger.Log("visible message")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden message") {
		t.Error("disabled logger must drop messages")
	}
	if !strings.Contains(string(data), "visible message") {
		t.Error("re-enabled logger must write messages")
	}
}

func TestNopLoggerSafe(t *testing.T) {
	logger := NopLogger()
	logger.SetEnabled(true)
	logger.Log("ignored")
	if err := logger.Close(); err != nil {
		t.Errorf("close: %v", err)
	}

	var nilLogger *DebugLogger
	nilLogger.SetEnabled(false)
	nilLogger.Log("ignored")
	if err := nilLogger.Close(); err != nil {
		t.Errorf("nil close: %v", err)
	}
}
