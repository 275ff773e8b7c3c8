package correlate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksora/roblog/internal/domain"
	"github.com/iksora/roblog/internal/logsource"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func logtext(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func window(t *testing.T, center string, minutes int) domain.TimeWindow {
	t.Helper()
	ts, err := time.ParseInLocation(domain.TimeLayout, center, time.Local)
	require.NoError(t, err)
	return domain.NewTimeWindow(ts, minutes, minutes)
}

func TestExtract_WindowBounds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "driver.log", logtext(
		"2024-01-15 00:50:00 before the window",
		"2024-01-15 00:51:31 exactly on the lower bound",
		"2024-01-15 01:00:58 inside the window",
		"2024-01-15 01:11:31 exactly on the upper bound",
		"2024-01-15 01:11:32 after the window",
	))

	c := New(logsource.NewReader(dir), 0)
	got, err := c.Extract(context.Background(), window(t, "2024-01-15 01:01:31", 10))
	require.NoError(t, err)
	require.True(t, got.Found())
	assert.False(t, got.DateFallback)

	var texts []string
	for _, l := range got.Lines {
		texts = append(texts, l.RawText)
	}
	assert.Equal(t, []string{
		"2024-01-15 00:51:31 exactly on the lower bound",
		"2024-01-15 01:00:58 inside the window",
		"2024-01-15 01:11:31 exactly on the upper bound",
	}, texts)
}

func TestExtract_MergesFilesChronologically(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_navigation.log", logtext(
		"2024-01-15 01:00:10 nav line one",
		"2024-01-15 01:00:30 nav line two",
	))
	writeFile(t, dir, "a_driver.log", logtext(
		"2024-01-15 01:00:20 driver line one",
		"2024-01-15 01:00:30 driver tie with nav",
	))

	c := New(logsource.NewReader(dir), 0)
	got, err := c.Extract(context.Background(), window(t, "2024-01-15 01:00:00", 5))
	require.NoError(t, err)
	require.Len(t, got.Lines, 4)

	assert.Equal(t, "nav line one", suffix(got.Lines[0].RawText))
	assert.Equal(t, "driver line one", suffix(got.Lines[1].RawText))
	// Equal timestamps break ties by source file name.
	assert.Equal(t, "a_driver.log", got.Lines[2].SourceFile)
	assert.Equal(t, "b_navigation.log", got.Lines[3].SourceFile)
}

func TestExtract_UntimedLinesFollowTheirAnchor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "node.log", logtext(
		"orphan line before any timestamp",
		"2024-01-15 01:00:10 ERROR planner exception",
		"  traceback frame one",
		"  traceback frame two",
		"2024-01-15 03:00:00 far outside the window",
		"  this continuation is outside too",
	))

	c := New(logsource.NewReader(dir), 0)
	got, err := c.Extract(context.Background(), window(t, "2024-01-15 01:00:00", 5))
	require.NoError(t, err)
	require.Len(t, got.Lines, 3)

	anchor := got.Lines[0]
	assert.Equal(t, "2024-01-15 01:00:10 ERROR planner exception", anchor.RawText)
	for _, l := range got.Lines[1:] {
		assert.True(t, anchor.Timestamp.Equal(l.Timestamp), "continuation inherits the anchor instant")
	}
	assert.Equal(t, "  traceback frame one", got.Lines[1].RawText)
	assert.Equal(t, "  traceback frame two", got.Lines[2].RawText)
}

func TestExtract_EmptyWindowIsSuccess(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "quiet.log", "2024-01-15 09:00:00 nothing interesting\n")

	c := New(logsource.NewReader(dir), 0)
	got, err := c.Extract(context.Background(), window(t, "2023-06-01 12:00:00", 10))
	require.NoError(t, err)
	assert.False(t, got.Found())
	assert.Empty(t, got.Lines)
}

func TestExtract_EmptyDirectoryIsSuccess(t *testing.T) {
	c := New(logsource.NewReader(t.TempDir()), 0)
	got, err := c.Extract(context.Background(), window(t, "2024-01-15 01:00:00", 10))
	require.NoError(t, err)
	assert.False(t, got.Found())
}

func TestExtract_MissingDirectoryIsError(t *testing.T) {
	c := New(logsource.NewReader("/nonexistent/robot/logs"), 0)
	_, err := c.Extract(context.Background(), window(t, "2024-01-15 01:00:00", 10))
	require.Error(t, err)
}

func TestExtract_DateFallback(t *testing.T) {
	dir := t.TempDir()
	// Dates embedded in text the normalizer cannot parse as instants.
	writeFile(t, dir, "mqtt.txt", logtext(
		"session opened on 2024-01-15, broker at 10.0.0.2",
		"unrelated line",
		"closing session dated 2024-01-15",
	))

	c := New(logsource.NewReader(dir), 0)
	got, err := c.Extract(context.Background(), window(t, "2024-01-15 01:01:31", 10))
	require.NoError(t, err)
	require.True(t, got.Found())
	assert.True(t, got.DateFallback)
	require.Len(t, got.Lines, 2)
	assert.Contains(t, got.Lines[0].RawText, "2024-01-15")
}

func TestExtract_MaxLinesCap(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString(time.Date(2024, 1, 15, 1, 0, i, 0, time.Local).Format(domain.TimeLayout))
		b.WriteString(" tick\n")
	}
	writeFile(t, dir, "ticks.log", b.String())

	c := New(logsource.NewReader(dir), 10)
	got, err := c.Extract(context.Background(), window(t, "2024-01-15 01:00:00", 5))
	require.NoError(t, err)
	assert.Len(t, got.Lines, 10)
	// The cap keeps the earliest lines.
	assert.Contains(t, got.Lines[0].RawText, "01:00:00")
}

func TestPreview(t *testing.T) {
	t.Run("renders file and timestamp per line", func(t *testing.T) {
		ts := time.Date(2024, 1, 15, 1, 0, 0, 0, time.Local)
		c := domain.CorrelatedLog{Lines: []domain.LogLine{
			{SourceFile: "driver.log", RawText: "2024-01-15 01:00:00 motor ok  ", Timestamp: ts, Offset: 1},
		}}
		p := Preview(c)
		assert.Equal(t, "driver.log 2024-01-15 01:00:00 2024-01-15 01:00:00 motor ok\n", p)
	})

	t.Run("truncates at the preview budget", func(t *testing.T) {
		ts := time.Date(2024, 1, 15, 1, 0, 0, 0, time.Local)
		long := strings.Repeat("x", 500)
		var lines []domain.LogLine
		for i := 0; i < 20; i++ {
			lines = append(lines, domain.LogLine{SourceFile: "big.log", RawText: long, Timestamp: ts, Offset: i + 1})
		}
		p := Preview(domain.CorrelatedLog{Lines: lines})
		assert.Equal(t, domain.PreviewLimit, len(p))
	})

	t.Run("never splits a multi-byte rune at the budget", func(t *testing.T) {
		ts := time.Date(2024, 1, 15, 1, 0, 0, 0, time.Local)
		long := strings.Repeat("电机故障", 200)
		var lines []domain.LogLine
		for i := 0; i < 10; i++ {
			lines = append(lines, domain.LogLine{SourceFile: "driver.log", RawText: long, Timestamp: ts, Offset: i + 1})
		}
		p := Preview(domain.CorrelatedLog{Lines: lines})
		assert.LessOrEqual(t, len(p), domain.PreviewLimit)
		assert.True(t, utf8.ValidString(p))
	})
}

func suffix(raw string) string {
	return strings.TrimSpace(raw[len("2024-01-15 01:00:10 "):])
}
