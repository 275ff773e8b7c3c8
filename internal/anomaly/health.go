package anomaly

import (
	"fmt"
	"sort"

	"github.com/iksora/roblog/internal/domain"
)

// Weights is the severity penalty table used to derive the health
// score. It is configuration, not hard-coded math: callers may load
// their own table.
type Weights map[domain.Severity]int

// DefaultWeights matches the production scoring policy.
func DefaultWeights() Weights {
	return Weights{
		domain.SeverityCritical: 30,
		domain.SeverityHigh:     15,
		domain.SeverityMedium:   5,
		domain.SeverityLow:      1,
	}
}

// KeyIssueLimit caps the key_issues list on an assessment.
const KeyIssueLimit = 10

// Assess derives a health assessment from a set of anomalies. Pure
// function: identical inputs always yield identical output, and an
// empty set scores exactly 100.
func Assess(anomalies []domain.Anomaly, weights Weights) domain.HealthAssessment {
	if weights == nil {
		weights = DefaultWeights()
	}

	breakdown := map[domain.Severity]int{
		domain.SeverityCritical: 0,
		domain.SeverityHigh:     0,
		domain.SeverityMedium:   0,
		domain.SeverityLow:      0,
	}
	score := 100
	for _, a := range anomalies {
		breakdown[a.Severity]++
		score -= weights[a.Severity]
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	key := make([]domain.Anomaly, len(anomalies))
	copy(key, anomalies)
	// Severity first, then recency.
	sort.SliceStable(key, func(i, j int) bool {
		if key[i].Severity.Priority() != key[j].Severity.Priority() {
			return key[i].Severity.Priority() > key[j].Severity.Priority()
		}
		return key[i].Timestamp.After(key[j].Timestamp)
	})
	if len(key) > KeyIssueLimit {
		key = key[:KeyIssueLimit]
	}

	return domain.HealthAssessment{
		Score:           score,
		Status:          domain.StatusForScore(score),
		Breakdown:       breakdown,
		KeyIssues:       key,
		Recommendations: recommendations(score, breakdown),
	}
}

// recommendations is deterministic rule-matching on the breakdown.
func recommendations(score int, breakdown map[domain.Severity]int) []string {
	var recs []string
	if n := breakdown[domain.SeverityCritical]; n > 0 {
		recs = append(recs, fmt.Sprintf("%d critical issue(s) found: immediate intervention required", n))
	}
	if n := breakdown[domain.SeverityHigh]; n > 0 {
		recs = append(recs, fmt.Sprintf("%d high-severity issue(s) found: urgent review recommended", n))
	}
	switch {
	case score < 50:
		recs = append(recs, "system health is degraded: run a full diagnostic and service pass")
	case score < 70:
		recs = append(recs, "system has room for improvement: prioritize the high-severity issues")
	default:
		recs = append(recs, "system is operating normally: continue monitoring")
	}
	return recs
}
