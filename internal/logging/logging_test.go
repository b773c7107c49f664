package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "feet.log")
	logger, closer, err := New(path, "info")
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.Info("glass added", "ml", 250)
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "glass added") || !strings.Contains(out, "ml=250") {
		t.Fatalf("unexpected log output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatal("debug line should be filtered at info level")
	}
}

func TestNewStderr(t *testing.T) {
	_, closer, err := New("-", "debug")
	if err != nil {
		t.Fatal(err)
	}
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, _, err := New("-", "verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
