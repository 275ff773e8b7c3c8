package domain

import "time"

// TimeLayout is the canonical boundary representation for instants.
// All internal times are timezone-naive local time, matching the
// timestamps written by the robot's log files.
const TimeLayout = "2006-01-02 15:04:05"

// LogLine is a single raw line read from a log file. Immutable once
// produced: created by the reader/normalizer, consumed after merge.
type LogLine struct {
	SourceFile string    `json:"source_file"`
	RawText    string    `json:"raw_text"`
	Timestamp  time.Time `json:"timestamp,omitempty"` // zero value means no timestamp recognized
	Offset     int       `json:"offset"`              // line position within the source file
}

// HasTimestamp reports whether a timestamp was recognized on this line.
func (l LogLine) HasTimestamp() bool {
	return !l.Timestamp.IsZero()
}

// TimeWindow bounds log extraction to [Center-Before, Center+After].
type TimeWindow struct {
	Center time.Time
	Before time.Duration
	After  time.Duration
}

// NewTimeWindow builds a symmetric window of the given width in minutes.
func NewTimeWindow(center time.Time, beforeMinutes, afterMinutes int) TimeWindow {
	if beforeMinutes < 0 {
		beforeMinutes = 0
	}
	if afterMinutes < 0 {
		afterMinutes = 0
	}
	return TimeWindow{
		Center: center,
		Before: time.Duration(beforeMinutes) * time.Minute,
		After:  time.Duration(afterMinutes) * time.Minute,
	}
}

// Start returns the inclusive lower bound of the window.
func (w TimeWindow) Start() time.Time {
	return w.Center.Add(-w.Before)
}

// End returns the inclusive upper bound of the window.
func (w TimeWindow) End() time.Time {
	return w.Center.Add(w.After)
}

// Contains reports whether t lies inside the window (inclusive).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start()) && !t.After(w.End())
}

// CorrelatedLog is the chronologically merged line sequence inside a
// window. Lines are ascending by timestamp, ties broken by
// (SourceFile, Offset) so results are deterministic regardless of scan
// order. Read-only downstream.
type CorrelatedLog struct {
	Window TimeWindow
	Lines  []LogLine

	// DateFallback marks results produced by the date-substring
	// fallback when no timestamped line landed in the window.
	DateFallback bool
}

// Found reports whether the extraction produced any lines. An empty
// result is success with an empty payload, not an error.
func (c CorrelatedLog) Found() bool {
	return len(c.Lines) > 0
}
