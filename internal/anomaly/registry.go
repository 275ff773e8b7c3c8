// Package anomaly scans correlated log lines against a data-driven
// rule registry and aggregates matches into a health assessment.
package anomaly

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/iksora/roblog/internal/domain"
)

//go:embed registry.yaml
var defaultRegistryYAML []byte

// Rule is one loaded registry entry. Rules are matched in registry
// order; the first match wins.
type Rule struct {
	Pattern     string          `yaml:"pattern" json:"pattern"`
	Type        string          `yaml:"type" json:"type"`
	Severity    domain.Severity `yaml:"severity" json:"severity"`
	Description string          `yaml:"description" json:"description"`

	re *regexp.Regexp
}

// Registry is an ordered, loaded-once rule table. Initialized at
// startup and never mutated, so unsynchronized concurrent reads are
// safe.
type Registry struct {
	Rules []Rule
}

type registryDoc struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRegistry parses and compiles a YAML rule document.
func LoadRegistry(data []byte) (*Registry, error) {
	var doc registryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse anomaly registry: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("anomaly registry has no rules")
	}
	for i := range doc.Rules {
		re, err := regexp.Compile(doc.Rules[i].Pattern)
		if err != nil {
			return nil, fmt.Errorf("anomaly rule %d (%s): %w", i, doc.Rules[i].Type, err)
		}
		doc.Rules[i].re = re
		switch doc.Rules[i].Severity {
		case domain.SeverityCritical, domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow:
		default:
			return nil, fmt.Errorf("anomaly rule %d (%s): unknown severity %q", i, doc.Rules[i].Type, doc.Rules[i].Severity)
		}
	}
	return &Registry{Rules: doc.Rules}, nil
}

// LoadRegistryFile loads a registry from a YAML file on disk.
func LoadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read anomaly registry: %w", err)
	}
	return LoadRegistry(data)
}

// DefaultRegistry returns the embedded rule table. The embedded
// document is validated by tests, so a parse failure here is a build
// defect.
func DefaultRegistry() *Registry {
	reg, err := LoadRegistry(defaultRegistryYAML)
	if err != nil {
		panic(err)
	}
	return reg
}

// match returns the first rule matching the line, or nil.
func (r *Registry) match(line string) *Rule {
	for i := range r.Rules {
		if r.Rules[i].re.MatchString(line) {
			return &r.Rules[i]
		}
	}
	return nil
}
