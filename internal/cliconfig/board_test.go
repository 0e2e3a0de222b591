package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectBoardFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model")
	if err := os.WriteFile(path, []byte("Raspberry Pi 4 Model B Rev 1.4\x00"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	if got := detectBoardFrom(path); got != "Raspberry Pi 4 Model B Rev 1.4" {
		t.Errorf("detectBoardFrom = %q", got)
	}
}

func TestDetectBoardFromMissing(t *testing.T) {
	if got := detectBoardFrom(filepath.Join(t.TempDir(), "model")); got != "" {
		t.Errorf("detectBoardFrom = %q, want empty", got)
	}
}

func TestApplyBoardKeepsExisting(t *testing.T) {
	cfg := Config{Board: "STM32L476 Nucleo"}
	ApplyBoard(&cfg)
	if cfg.Board != "STM32L476 Nucleo" {
		t.Errorf("Board = %q", cfg.Board)
	}
}
