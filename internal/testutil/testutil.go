package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempLibrary creates a temporary content root for testing
func TempLibrary(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(root, 0o755))
	return root
}

// WriteFile writes content to a file in the test directory
func WriteFile(t *testing.T, dir, path, content string) {
	t.Helper()
	fullPath := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
}

// ReadFile reads content from a test file
func ReadFile(t *testing.T, dir, path string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, path))
	require.NoError(t, err)
	return string(content)
}

// NormalizeHTML normalizes HTML for comparison (whitespace between tags)
func NormalizeHTML(html string) string {
	html = regexp.MustCompile(`\s+`).ReplaceAllString(html, " ")
	html = regexp.MustCompile(`>\s+<`).ReplaceAllString(html, "><")
	return strings.TrimSpace(html)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
