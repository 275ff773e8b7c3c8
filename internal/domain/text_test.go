package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "shorter than limit", in: "motor fault", limit: 100, want: "motor fault"},
		{name: "exactly at limit", in: "abcd", limit: 4, want: "abcd"},
		{name: "ascii cut", in: "abcdef", limit: 3, want: "abc"},
		{name: "cut lands on rune boundary", in: "电机故障", limit: 6, want: "电机"},
		{name: "cut lands mid rune", in: "电机故障", limit: 7, want: "电机"},
		{name: "zero limit", in: "电机", limit: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateText(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncateText_LongMixedContent(t *testing.T) {
	s := "ERROR " + strings.Repeat("导航模块异常", 50)
	got := TruncateText(s, 200)
	assert.LessOrEqual(t, len(got), 200)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(s, got))
}
