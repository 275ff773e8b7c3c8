// Package correlate extracts time-windowed log lines from many files
// and merges them into one chronological sequence.
package correlate

import (
	"container/heap"
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/iksora/roblog/internal/domain"
	"github.com/iksora/roblog/internal/logsource"
	"github.com/iksora/roblog/internal/timeparse"
)

// DefaultMaxLines caps the number of lines an extraction retains.
const DefaultMaxLines = 1000

// Correlator streams files through the timestamp normalizer and keeps
// the lines that land inside a window. Files are scanned concurrently;
// the result is merged by timestamp so ordering never depends on scan
// order. Stateless and safe for concurrent use.
type Correlator struct {
	reader   *logsource.Reader
	maxLines int
}

// New creates a correlator over the given log source. maxLines <= 0
// selects DefaultMaxLines.
func New(reader *logsource.Reader, maxLines int) *Correlator {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Correlator{reader: reader, maxLines: maxLines}
}

// Extract returns the chronologically merged lines inside the window.
//
// Untimed-line policy: a line with no recognizable timestamp is
// attached to the nearest preceding timestamped line in the same file
// and is retained exactly when that anchor is retained, inheriting the
// anchor's instant for ordering (multi-line stack traces stay with
// their first line). Untimed lines before any timestamped line in a
// file never enter a window.
//
// An empty result is success with an empty payload. When nothing
// timestamped lands in the window, Extract falls back to matching the
// window's date as a bare substring, flagged via DateFallback.
func (c *Correlator) Extract(ctx context.Context, window domain.TimeWindow) (domain.CorrelatedLog, error) {
	files, err := c.reader.List()
	if err != nil {
		return domain.CorrelatedLog{}, err
	}

	perFile := make([][]domain.LogLine, len(files))
	group, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		group.Go(func() error {
			lines, err := c.scanFile(ctx, f.Name, window)
			if err != nil {
				return err
			}
			perFile[i] = lines
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return domain.CorrelatedLog{}, err
	}

	merged := mergeStreams(perFile, c.maxLines)
	if len(merged) == 0 {
		fallback, err := c.dateFallback(ctx, files, window)
		if err != nil {
			return domain.CorrelatedLog{}, err
		}
		if len(fallback) > 0 {
			return domain.CorrelatedLog{Window: window, Lines: fallback, DateFallback: true}, nil
		}
	}

	return domain.CorrelatedLog{Window: window, Lines: merged}, nil
}

// scanFile retains the windowed lines of one file, sorted and ready
// for merging.
func (c *Correlator) scanFile(ctx context.Context, name string, window domain.TimeWindow) ([]domain.LogLine, error) {
	it, err := c.reader.Open(name)
	if err != nil {
		// A file listed a moment ago may be gone now; skip it.
		return nil, nil
	}
	defer it.Close()

	var (
		retained     []domain.LogLine
		lastRetained bool
		anchor       domain.LogLine
	)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		raw, offset, ok := it.Next()
		if !ok {
			break
		}
		ts, found := timeparse.Extract(raw)
		if !found {
			if lastRetained {
				retained = append(retained, domain.LogLine{
					SourceFile: name,
					RawText:    raw,
					Timestamp:  anchor.Timestamp,
					Offset:     offset,
				})
			}
			continue
		}

		line := domain.LogLine{SourceFile: name, RawText: raw, Timestamp: ts, Offset: offset}
		if window.Contains(ts) {
			retained = append(retained, line)
			lastRetained = true
			anchor = line
		} else {
			lastRetained = false
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	// Stable sort so out-of-order timestamps within a file still merge
	// into a globally non-decreasing sequence.
	sort.SliceStable(retained, func(i, j int) bool {
		if !retained[i].Timestamp.Equal(retained[j].Timestamp) {
			return retained[i].Timestamp.Before(retained[j].Timestamp)
		}
		return retained[i].Offset < retained[j].Offset
	})
	return retained, nil
}

// dateFallback matches the window's date as plain text, for files
// whose lines carry no parseable timestamp at all.
func (c *Correlator) dateFallback(ctx context.Context, files []logsource.FileInfo, window domain.TimeWindow) ([]domain.LogLine, error) {
	date := window.Center.Format("2006-01-02")
	var matched []domain.LogLine
	for _, f := range files {
		it, err := c.reader.Open(f.Name)
		if err != nil {
			continue
		}
		for {
			select {
			case <-ctx.Done():
				it.Close()
				return nil, ctx.Err()
			default:
			}
			raw, offset, ok := it.Next()
			if !ok {
				break
			}
			if strings.Contains(raw, date) {
				matched = append(matched, domain.LogLine{SourceFile: f.Name, RawText: raw, Offset: offset})
				if len(matched) >= c.maxLines {
					it.Close()
					return matched, nil
				}
			}
		}
		it.Close()
	}
	return matched, nil
}

// mergeItem is one stream head in the k-way merge.
type mergeItem struct {
	line   domain.LogLine
	stream int
	index  int
}

type mergeHeap []mergeItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	a, b := h[i].line, h[j].line
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	if a.SourceFile != b.SourceFile {
		return a.SourceFile < b.SourceFile
	}
	return a.Offset < b.Offset
}
func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) { *h = append(*h, x.(mergeItem)) }

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// mergeStreams performs a k-way merge of per-file sorted streams keyed
// on (timestamp, source file, offset), capped at maxLines.
func mergeStreams(streams [][]domain.LogLine, maxLines int) []domain.LogLine {
	h := make(mergeHeap, 0, len(streams))
	for i, s := range streams {
		if len(s) > 0 {
			h = append(h, mergeItem{line: s[0], stream: i, index: 0})
		}
	}
	heap.Init(&h)

	var merged []domain.LogLine
	for h.Len() > 0 && len(merged) < maxLines {
		item := heap.Pop(&h).(mergeItem)
		merged = append(merged, item.line)
		next := item.index + 1
		if next < len(streams[item.stream]) {
			heap.Push(&h, mergeItem{line: streams[item.stream][next], stream: item.stream, index: next})
		}
	}
	return merged
}

// Preview renders a correlated log as text, truncated to the preview
// budget. The structured sequence is never altered.
func Preview(c domain.CorrelatedLog) string {
	var b strings.Builder
	for _, line := range c.Lines {
		if line.HasTimestamp() {
			b.WriteString(line.SourceFile + " " + line.Timestamp.Format(domain.TimeLayout) + " " + strings.TrimSpace(line.RawText) + "\n")
		} else {
			b.WriteString(line.SourceFile + " " + strings.TrimSpace(line.RawText) + "\n")
		}
		if b.Len() > domain.PreviewLimit {
			break
		}
	}
	return domain.TruncateText(b.String(), domain.PreviewLimit)
}
