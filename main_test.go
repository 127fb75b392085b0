package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotModHashDetectsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ch.md")
	require.NoError(t, os.WriteFile(path, []byte("# One\n"), 0o644))

	before, err := snapshotModHash([]string{dir}, filepath.Join(dir, "docs"))
	require.NoError(t, err)

	same, err := snapshotModHash([]string{dir}, filepath.Join(dir, "docs"))
	require.NoError(t, err)
	assert.Equal(t, before, same)

	// mtime resolution can be coarse
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	after, err := snapshotModHash([]string{dir}, filepath.Join(dir, "docs"))
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestSnapshotModHashIgnoresBuildOutput(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "docs")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ch.md"), []byte("# One\n"), 0o644))
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	before, err := snapshotModHash([]string{dir}, outDir)
	require.NoError(t, err)

	// output written during a rebuild must not look like a source change
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "ch.html"), []byte("<html></html>"), 0o644))

	after, err := snapshotModHash([]string{dir}, outDir)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSnapshotModHashSkipsMissingPaths(t *testing.T) {
	dir := t.TempDir()
	hash, err := snapshotModHash([]string{filepath.Join(dir, "absent")}, dir)
	require.NoError(t, err)
	assert.Empty(t, hash)
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", humanBytes(512))
	assert.Equal(t, "1.0 KiB", humanBytes(1024))
	assert.Equal(t, "1.5 MiB", humanBytes(3*1024*1024/2))
}
