package cliconfig

import (
	"os"
	"strings"
)

// deviceTreeModelPath names the board model on Linux SBCs.
const deviceTreeModelPath = "/proc/device-tree/model"

// DetectBoard returns the board model from the device tree, or "" when it
// cannot be determined (non-Linux hosts, containers).
func DetectBoard() string {
	return detectBoardFrom(deviceTreeModelPath)
}

func detectBoardFrom(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	// The device tree pads the model string with NULs.
	return strings.TrimSpace(strings.Trim(string(b), "\x00"))
}

// ApplyBoard fills in cfg.Board from the device tree when unset.
func ApplyBoard(cfg *Config) {
	if cfg.Board != "" {
		return
	}
	cfg.Board = DetectBoard()
}
