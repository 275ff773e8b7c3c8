// Package logsource lists log files in a directory and streams their
// lines. Filesystem access is read-only.
package logsource

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DirectoryNotFoundError reports a missing or non-directory log root.
type DirectoryNotFoundError struct {
	Path string
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("log directory not found: %s", e.Path)
}

// FileInfo describes one candidate log file.
type FileInfo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size_bytes"`
	Modified time.Time `json:"modified_time"`
}

// Reader lists and streams log files under a single directory
// (non-recursive). Safe for concurrent use: it holds no mutable state.
type Reader struct {
	dir string
}

// NewReader creates a reader rooted at dir. The directory is checked
// lazily on each call so a reader can outlive directory churn.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Dir returns the configured log root.
func (r *Reader) Dir() string {
	return r.dir
}

// List returns every regular file directly under the log root, sorted
// by name for deterministic downstream ordering.
func (r *Reader) List() ([]FileInfo, error) {
	st, err := os.Stat(r.dir)
	if err != nil || !st.IsDir() {
		return nil, &DirectoryNotFoundError{Path: r.dir}
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read log directory: %w", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // file vanished between listing and stat
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, FileInfo{
			Name:     entry.Name(),
			Path:     filepath.Join(r.dir, entry.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Open returns a restartable line iterator over one file. The caller
// must Close it. Each Open starts at the beginning of the file.
func (r *Reader) Open(name string) (*LineIterator, error) {
	f, err := os.Open(filepath.Join(r.dir, name))
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", name, err)
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &LineIterator{file: f, scanner: sc}, nil
}

// LineIterator yields one line at a time without loading the whole
// file into memory.
type LineIterator struct {
	file    *os.File
	scanner *bufio.Scanner
	offset  int
}

// Next returns the next line and its 1-based line offset. ok is false
// at end of file or on read error (see Err).
func (it *LineIterator) Next() (line string, offset int, ok bool) {
	if !it.scanner.Scan() {
		return "", 0, false
	}
	it.offset++
	return it.scanner.Text(), it.offset, true
}

// Err reports any read error hit by Next.
func (it *LineIterator) Err() error {
	return it.scanner.Err()
}

// Close releases the underlying file handle.
func (it *LineIterator) Close() error {
	return it.file.Close()
}
