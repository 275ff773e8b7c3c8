// Package timeparse recognizes the timestamp spellings that appear in
// robot log files and normalizes them to a local-time instant.
package timeparse

import (
	"regexp"
	"strconv"
	"time"
)

// pattern pairs a recognizer regexp with the layout of its first
// capture group. A nonzero msGroup names the capture holding a
// millisecond suffix.
type pattern struct {
	re      *regexp.Regexp
	layout  string
	msGroup int
}

// patterns are tried in a fixed priority order; the first match wins.
// Order matters: the millisecond-colon form is a superset of the plain
// standard form and must be tried first, otherwise "00:00:00:004"
// would lose its sub-second part to the shorter match.
var patterns = []pattern{
	// 2025-10-12 00:00:00:004 (milliseconds after a colon)
	{re: regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}):(\d{1,3})`), layout: "2006-01-02 15:04:05", msGroup: 2},
	// 2025-11-30 14:30:00
	{re: regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`), layout: "2006-01-02 15:04:05"},
	// 2025-11-30T14:30:00
	{re: regexp.MustCompile(`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})`), layout: "2006-01-02T15:04:05"},
	// [2025-11-30 14:30:00]
	{re: regexp.MustCompile(`\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]`), layout: "2006-01-02 15:04:05"},
	// 2025/11/30 14:30:00
	{re: regexp.MustCompile(`(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2})`), layout: "2006/01/02 15:04:05"},
}

// Extract attempts to pull a timestamp out of a log line. The second
// return is false when no pattern matches; absence is data, not an
// error. Extract is pure and total: it never panics on arbitrary
// input, and repeated calls on the same line yield the same result.
func Extract(line string) (time.Time, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		t, err := time.ParseInLocation(p.layout, m[1], time.Local)
		if err != nil {
			continue
		}
		if p.msGroup > 0 && p.msGroup < len(m) {
			if ms, err := strconv.Atoi(m[p.msGroup]); err == nil && ms < 1000 {
				t = t.Add(time.Duration(ms) * time.Millisecond)
			}
		}
		return t, true
	}
	return time.Time{}, false
}

// ParseInstant parses a boundary time string in the canonical
// YYYY-MM-DD HH:MM:SS representation.
func ParseInstant(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04:05", s, time.Local)
}
