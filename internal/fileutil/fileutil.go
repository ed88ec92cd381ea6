// Package fileutil holds small filesystem helpers shared by commands.
package fileutil

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SanitizeFilename cleans a filename by replacing problematic characters
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, ":", " -")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	return name
}

// FileExists checks if a file exists at the given path
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WriteJSONFile writes data as indented JSON, respecting the overwrite flag.
// Returns true if the file was written, false if it was skipped
func WriteJSONFile(data any, filePath string, overwrite bool) (bool, error) {
	if FileExists(filePath) && !overwrite {
		slog.Info("JSON file already exists, skipping", "filename", filePath)
		return false, nil
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}

	slog.Info("Writing JSON file", "filename", filePath, "overwrite", overwrite)
	if err := os.WriteFile(filePath, jsonData, 0o644); err != nil {
		return false, fmt.Errorf("failed to write JSON file: %w", err)
	}
	return true, nil
}
