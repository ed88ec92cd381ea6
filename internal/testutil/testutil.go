// Package testutil provides sandboxed test environments and fixtures shared by
// the shelf packages.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnv is a temporary directory that refuses paths escaping it. It is
// removed when the test completes.
type TestEnv struct {
	t       *testing.T
	rootDir string
}

// NewTestEnv creates a sandbox rooted in t.TempDir().
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return &TestEnv{t: t, rootDir: t.TempDir()}
}

// RootDir returns the sandbox root.
func (e *TestEnv) RootDir() string {
	return e.rootDir
}

// Path joins elem under the sandbox root and fails the test if the result
// leaves the sandbox.
func (e *TestEnv) Path(elem ...string) string {
	e.t.Helper()

	cleanPath := filepath.Clean(filepath.Join(e.rootDir, filepath.Join(elem...)))
	root := filepath.Clean(e.rootDir)
	if cleanPath != root && !strings.HasPrefix(cleanPath, root+string(filepath.Separator)) {
		e.t.Fatalf("path %q escapes test sandbox %q", cleanPath, e.rootDir)
	}
	return cleanPath
}

// WriteFile writes content under the sandbox, creating parent directories.
func (e *TestEnv) WriteFile(path string, content []byte) string {
	e.t.Helper()

	absPath := e.Path(path)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		e.t.Fatalf("failed to create directory for %q: %v", absPath, err)
	}
	if err := os.WriteFile(absPath, content, 0o644); err != nil {
		e.t.Fatalf("failed to write file %q: %v", absPath, err)
	}
	return absPath
}

// WriteFileString is WriteFile for string content.
func (e *TestEnv) WriteFileString(path, content string) string {
	e.t.Helper()
	return e.WriteFile(path, []byte(content))
}

// ReadFile reads a file from the sandbox.
func (e *TestEnv) ReadFile(path string) []byte {
	e.t.Helper()

	content, err := os.ReadFile(e.Path(path))
	if err != nil {
		e.t.Fatalf("failed to read file %q: %v", path, err)
	}
	return content
}

// FileExists reports whether path exists in the sandbox.
func (e *TestEnv) FileExists(path string) bool {
	e.t.Helper()

	_, err := os.Stat(e.Path(path))
	return err == nil
}

// Chdir moves into a sandbox directory for the rest of the test.
func (e *TestEnv) Chdir(path string) {
	e.t.Helper()

	origDir, err := os.Getwd()
	if err != nil {
		e.t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(e.Path(path)); err != nil {
		e.t.Fatalf("failed to change directory: %v", err)
	}
	e.t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			e.t.Errorf("failed to restore directory to %q: %v", origDir, err)
		}
	})
}
