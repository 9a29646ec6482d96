package logging

import (
	"os"
	"path/filepath"
	"testing"

	"safaigo/pkg/config"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	requestLog := filepath.Join(tempDir, "requests.log")

	cfg := &config.LogConfig{
		Server: config.LogSettings{
			Path:  serverLog,
			Level: "DEBUG",
		},
		Requests: config.LogSettings{
			Path:  requestLog,
			Level: "INFO",
		},
	}

	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	if _, err := os.Stat(serverLog); os.IsNotExist(err) {
		t.Error("Server log file not created")
	}
	if _, err := os.Stat(requestLog); os.IsNotExist(err) {
		t.Error("Request log file not created")
	}

	if RequestLogger == nil {
		t.Error("RequestLogger was not initialized")
	}
}

func TestRotatePaths(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "server.log")

	if err := os.WriteFile(logPath, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rotatePaths(logPath)

	oldPath := logPath + ".old"
	data, err := os.ReadFile(oldPath)
	if err != nil {
		t.Fatalf("expected rotated file at %s: %v", oldPath, err)
	}
	if string(data) != "previous run\n" {
		t.Errorf("rotated content mismatch: %q", data)
	}
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Error("original log file should have been renamed away")
	}
}
