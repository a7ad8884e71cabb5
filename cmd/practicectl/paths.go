package main

import (
	"os"
	"path/filepath"
)

func xdgDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

func defaultDBPath() string {
	return filepath.Join(xdgDataHome(), "practicectl", "journal.db")
}
