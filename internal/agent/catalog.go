// Package agent selects the log files most likely to explain a
// free-text problem description, with a structured reasoning trace.
package agent

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultCatalogYAML []byte

// CatalogEntry describes one known log file type.
type CatalogEntry struct {
	Pattern     string   `yaml:"pattern" json:"pattern"`
	Category    string   `yaml:"category" json:"category"`
	Description string   `yaml:"description" json:"description"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
	Problems    []string `yaml:"problems" json:"problems"`
	Importance  string   `yaml:"importance" json:"importance"` // high, medium, low
}

// Prior returns the fixed per-file-type weight for the entry's
// importance class.
func (e CatalogEntry) Prior() float64 {
	switch e.Importance {
	case "high":
		return 1.5
	case "medium":
		return 1.0
	default:
		return 0.5
	}
}

// Catalog is the loaded-once log-type knowledge base. Never mutated
// after load; safe for unsynchronized concurrent reads.
type Catalog struct {
	Entries []CatalogEntry
}

type catalogDoc struct {
	LogTypes []CatalogEntry `yaml:"log_types"`
}

// LoadCatalog parses a YAML knowledge document.
func LoadCatalog(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse log knowledge catalog: %w", err)
	}
	if len(doc.LogTypes) == 0 {
		return nil, fmt.Errorf("log knowledge catalog is empty")
	}
	return &Catalog{Entries: doc.LogTypes}, nil
}

// LoadCatalogFile loads a catalog from a YAML file on disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log knowledge catalog: %w", err)
	}
	return LoadCatalog(data)
}

// DefaultCatalog returns the embedded knowledge base.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(defaultCatalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup finds the entry describing a file name: an exact match first,
// then the first entry whose pattern is a substring of the name.
func (c *Catalog) Lookup(fileName string) (CatalogEntry, bool) {
	for _, e := range c.Entries {
		if e.Pattern == fileName {
			return e, true
		}
	}
	for _, e := range c.Entries {
		if strings.Contains(fileName, e.Pattern) {
			return e, true
		}
	}
	return CatalogEntry{}, false
}
