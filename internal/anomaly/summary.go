package anomaly

import (
	"sort"

	"github.com/iksora/roblog/internal/domain"
)

// TopAnomalyLimit caps the top_anomalies list in a summary.
const TopAnomalyLimit = 30

// topMessageLimit bounds the message excerpt carried per top anomaly.
const topMessageLimit = 100

// Summary aggregates anomalies by severity, type and file.
type Summary struct {
	Total        int                     `json:"total_anomalies"`
	BySeverity   map[domain.Severity]int `json:"severity_distribution"`
	ByType       map[string]int          `json:"type_distribution"`
	ByFile       map[string]int          `json:"file_distribution"`
	TopAnomalies []domain.Anomaly        `json:"top_anomalies"`
}

// Summarize builds distribution statistics over a set of anomalies.
func Summarize(anomalies []domain.Anomaly) Summary {
	s := Summary{
		BySeverity: map[domain.Severity]int{
			domain.SeverityCritical: 0,
			domain.SeverityHigh:     0,
			domain.SeverityMedium:   0,
			domain.SeverityLow:      0,
		},
		ByType: map[string]int{},
		ByFile: map[string]int{},
	}
	for _, a := range anomalies {
		s.Total++
		s.BySeverity[a.Severity]++
		s.ByType[a.Type]++
		s.ByFile[a.SourceFile]++
	}

	top := make([]domain.Anomaly, len(anomalies))
	copy(top, anomalies)
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Severity.Priority() != top[j].Severity.Priority() {
			return top[i].Severity.Priority() > top[j].Severity.Priority()
		}
		return top[i].Timestamp.After(top[j].Timestamp)
	})
	if len(top) > TopAnomalyLimit {
		top = top[:TopAnomalyLimit]
	}
	for i := range top {
		top[i].Message = domain.TruncateText(top[i].Message, topMessageLimit)
	}
	s.TopAnomalies = top
	return s
}
