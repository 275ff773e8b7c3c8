package diagnose

import (
	"context"

	"github.com/iksora/roblog/internal/agent"
	"github.com/iksora/roblog/internal/anomaly"
	"github.com/iksora/roblog/internal/domain"
	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/timeparse"
)

// CatalogedFile is one directory entry joined against the knowledge
// catalog.
type CatalogedFile struct {
	logsource.FileInfo
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// DirectoryAnalysis is the bulk analysis surface over a whole log
// directory: anomaly statistics, health assessment and file catalog.
type DirectoryAnalysis struct {
	LogDir         string                  `json:"log_directory"`
	TotalFiles     int                     `json:"total_files"`
	AnomalySummary anomaly.Summary         `json:"anomaly_summary"`
	Health         domain.HealthAssessment `json:"health_assessment"`
	Files          []CatalogedFile         `json:"file_catalog"`
}

// AnalyzeDirectory streams every file in the directory through the
// classifier and aggregates the result. Unlike windowed extraction
// this scans files in full, so anomalies outside any window count
// toward health.
func AnalyzeDirectory(ctx context.Context, reader *logsource.Reader, classifier *anomaly.Classifier, catalog *agent.Catalog, weights anomaly.Weights) (DirectoryAnalysis, error) {
	files, err := reader.List()
	if err != nil {
		return DirectoryAnalysis{}, err
	}

	var anomalies []domain.Anomaly
	cataloged := make([]CatalogedFile, 0, len(files))
	for _, f := range files {
		entry := CatalogedFile{FileInfo: f}
		if ce, ok := catalog.Lookup(f.Name); ok {
			entry.Category = ce.Category
			entry.Description = ce.Description
			entry.Keywords = ce.Keywords
		}
		cataloged = append(cataloged, entry)

		fileAnomalies, err := scanFileAnomalies(ctx, reader, classifier, f.Name)
		if err != nil {
			return DirectoryAnalysis{}, err
		}
		anomalies = append(anomalies, fileAnomalies...)
	}

	return DirectoryAnalysis{
		LogDir:         reader.Dir(),
		TotalFiles:     len(files),
		AnomalySummary: anomaly.Summarize(anomalies),
		Health:         anomaly.Assess(anomalies, weights),
		Files:          cataloged,
	}, nil
}

func scanFileAnomalies(ctx context.Context, reader *logsource.Reader, classifier *anomaly.Classifier, name string) ([]domain.Anomaly, error) {
	it, err := reader.Open(name)
	if err != nil {
		return nil, nil
	}
	defer it.Close()

	var anomalies []domain.Anomaly
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		raw, offset, ok := it.Next()
		if !ok {
			return anomalies, it.Err()
		}
		ts, _ := timeparse.Extract(raw)
		line := domain.LogLine{SourceFile: name, RawText: raw, Timestamp: ts, Offset: offset}
		if a, matched := classifier.Classify(line); matched {
			anomalies = append(anomalies, a)
		}
	}
}
