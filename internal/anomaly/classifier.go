package anomaly

import (
	"strings"

	"github.com/iksora/roblog/internal/domain"
)

// Classifier turns log lines into anomalies using a fixed registry.
type Classifier struct {
	registry *Registry
}

// NewClassifier creates a classifier over the given registry. A nil
// registry selects the embedded default.
func NewClassifier(registry *Registry) *Classifier {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Classifier{registry: registry}
}

// Registry exposes the loaded rule table (read-only).
func (c *Classifier) Registry() *Registry {
	return c.registry
}

// Scan classifies every line and returns the detected anomalies in
// input order. A line matches at most one rule.
func (c *Classifier) Scan(lines []domain.LogLine) []domain.Anomaly {
	var anomalies []domain.Anomaly
	for _, line := range lines {
		if a, ok := c.Classify(line); ok {
			anomalies = append(anomalies, a)
		}
	}
	return anomalies
}

// Classify matches one line against the registry. The reported
// severity is the rule's, escalated (never lowered) when the line
// itself carries an explicit ERROR or WARN marker.
func (c *Classifier) Classify(line domain.LogLine) (domain.Anomaly, bool) {
	rule := c.registry.match(line.RawText)
	if rule == nil {
		return domain.Anomaly{}, false
	}

	severity := escalate(rule.Severity, line.RawText)
	msg := domain.TruncateText(strings.TrimSpace(line.RawText), domain.AnomalyMessageLimit)

	return domain.Anomaly{
		Type:       rule.Type,
		Severity:   severity,
		SourceFile: line.SourceFile,
		Timestamp:  line.Timestamp,
		Message:    msg,
	}, true
}

// escalate bumps severity for lines that self-report their level.
func escalate(base domain.Severity, line string) domain.Severity {
	switch {
	case strings.Contains(line, "ERROR") && base.Priority() < domain.SeverityHigh.Priority():
		return domain.SeverityHigh
	case strings.Contains(line, "WARN") && base.Priority() < domain.SeverityMedium.Priority():
		return domain.SeverityMedium
	}
	return base
}
