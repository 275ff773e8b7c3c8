package logsource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReader_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zeta.log", "z\n")
	writeFile(t, dir, "alpha.log", "a\n")
	writeFile(t, dir, "mqtt.txt", "m\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	files, err := NewReader(dir).List()
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"alpha.log", "mqtt.txt", "zeta.log"}, names)
	for _, f := range files {
		assert.NotZero(t, f.Size)
		assert.False(t, f.Modified.IsZero())
		assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
	}
}

func TestReader_ListMissingDirectory(t *testing.T) {
	_, err := NewReader("/nonexistent/robot/logs").List()
	require.Error(t, err)

	var nf *DirectoryNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, nf.Error(), "/nonexistent/robot/logs")
}

func TestReader_ListFileAsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "not_a_dir", "x\n")

	_, err := NewReader(filepath.Join(dir, "not_a_dir")).List()
	var nf *DirectoryNotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestLineIterator(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "driver.log", "first\nsecond\nthird\n")

	it, err := NewReader(dir).Open("driver.log")
	require.NoError(t, err)
	defer it.Close()

	var lines []string
	var offsets []int
	for {
		line, offset, ok := it.Next()
		if !ok {
			break
		}
		lines = append(lines, line)
		offsets = append(offsets, offset)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"first", "second", "third"}, lines)
	assert.Equal(t, []int{1, 2, 3}, offsets)
}

func TestReader_OpenMissingFile(t *testing.T) {
	_, err := NewReader(t.TempDir()).Open("ghost.log")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost.log")
}
