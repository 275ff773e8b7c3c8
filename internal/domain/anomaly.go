package domain

import "time"

// Severity classifies how serious an anomaly is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Priority returns the ordering weight of a severity (higher = worse).
func (s Severity) Priority() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 0
	default:
		return 0
	}
}

// ParseSeverity converts a string to a Severity, defaulting to low.
func ParseSeverity(s string) Severity {
	switch s {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityLow
	}
}

// AnomalyMessageLimit bounds the message text carried on an anomaly.
const AnomalyMessageLimit = 200

// Anomaly is a classified, severity-tagged event detected in log text.
// Never mutated after creation.
type Anomaly struct {
	Type       string    `json:"type"` // motor_error, sensor_offline, collision, ...
	Severity   Severity  `json:"severity"`
	SourceFile string    `json:"source_file"`
	Timestamp  time.Time `json:"timestamp,omitempty"`
	Message    string    `json:"message"` // truncated to AnomalyMessageLimit
}

// HealthStatus is the step-function bucket derived from the score.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthPoor      HealthStatus = "poor"
	HealthCritical  HealthStatus = "critical"
)

// StatusForScore maps a 0-100 score onto a status bucket.
func StatusForScore(score int) HealthStatus {
	switch {
	case score >= 90:
		return HealthExcellent
	case score >= 70:
		return HealthGood
	case score >= 50:
		return HealthFair
	case score >= 30:
		return HealthPoor
	default:
		return HealthCritical
	}
}

// HealthAssessment is derived purely from a set of anomalies.
type HealthAssessment struct {
	Score           int              `json:"health_score"` // 0-100
	Status          HealthStatus     `json:"health_status"`
	Breakdown       map[Severity]int `json:"anomaly_breakdown"`
	KeyIssues       []Anomaly        `json:"key_issues"`
	Recommendations []string         `json:"recommendations"`
}
