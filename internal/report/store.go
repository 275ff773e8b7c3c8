// Package report persists analysis reports to disk and lists them for
// retrieval. It serializes the core's structured results verbatim.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry describes one stored report file.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // json, text, other
	Size int64  `json:"size_bytes"`
	Path string `json:"path"`
}

// Store writes and lists reports under a single directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the reports directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save persists a result as JSON, plus an optional plain-text summary
// next to it. Returns the generated report ID.
func (s *Store) Save(prefix string, result any, textSummary string) (string, error) {
	id := fmt.Sprintf("%s_%s_%s", prefix, time.Now().Format("20060102_150405"), uuid.NewString()[:8])

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	jsonPath := filepath.Join(s.dir, id+".json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	if textSummary != "" {
		txtPath := filepath.Join(s.dir, id+".txt")
		if err := os.WriteFile(txtPath, []byte(textSummary), 0o644); err != nil {
			return "", fmt.Errorf("write report summary: %w", err)
		}
	}
	return id, nil
}

// List returns all stored reports, newest name first.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		name := de.Name()
		entries = append(entries, Entry{
			ID:   strings.TrimSuffix(name, filepath.Ext(name)),
			Name: name,
			Type: fileType(name),
			Size: info.Size(),
			Path: filepath.Join(s.dir, name),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name > entries[j].Name })
	return entries, nil
}

// Read returns the contents of one report, refusing paths that escape
// the reports directory.
func (s *Store) Read(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(s.dir)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return nil, fmt.Errorf("report path outside reports directory: %s", path)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return data, nil
}

func fileType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".txt":
		return "text"
	default:
		return "other"
	}
}
