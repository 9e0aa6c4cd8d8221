package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(Options{Level: "debug", Console: &buf})
	if err != nil {
		t.Fatal(err)
	}
	l.WithField("round", 3).Debug("judged")
	if !strings.Contains(buf.String(), "judged") || !strings.Contains(buf.String(), "round") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestNewLoggerBadLevel(t *testing.T) {
	if _, err := NewLogger(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if l := Must(Options{Level: "loud"}); l == nil {
		t.Fatal("Must should fall back to a usable logger")
	}
}

func TestNewLoggerFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "facepill.log")
	l, err := NewLogger(Options{File: file})
	if err != nil {
		t.Fatal(err)
	}
	l.Info("session started")

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "session started") {
		t.Errorf("log file = %q", data)
	}
}
