package formatter

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stripANSI removes ANSI escape codes so assertions are terminal-independent.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestRelativeDateFrom(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"today", testNow, "Today"},
		{"tomorrow", testNow.Add(24 * time.Hour), "Tomorrow"},
		{"yesterday", testNow.Add(-24 * time.Hour), "Yesterday"},
		{"3 days future", testNow.Add(3 * 24 * time.Hour), "In 3d"},
		{"3 days past", testNow.Add(-3 * 24 * time.Hour), "3d ago"},
		{"3 weeks future", testNow.Add(21 * 24 * time.Hour), "In 3w"},
		{"3 months future", testNow.Add(90 * 24 * time.Hour), "In 3mo"},
		{"2 weeks past", testNow.Add(-14 * 24 * time.Hour), "2w ago"},
		{"3 months past", testNow.Add(-90 * 24 * time.Hour), "3mo ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDateFrom(tt.input, testNow))
		})
	}
}

func TestHumanDate(t *testing.T) {
	assert.Equal(t, "Sep 30, 2022", HumanDate(time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC), testNow))
	assert.Equal(t, "Today", HumanDate(testNow.Add(-time.Hour), testNow))
	assert.Equal(t, "Yesterday", HumanDate(testNow.AddDate(0, 0, -1), testNow))
	assert.Equal(t, "--", HumanDate(time.Time{}, testNow))
}

func TestDeadlineStyled(t *testing.T) {
	assert.Equal(t, "--", stripANSI(DeadlineStyled("", testNow)))
	assert.Equal(t, "soon", stripANSI(DeadlineStyled("soon", testNow)))
	assert.Equal(t, "2025-06-25 (In 10d)", stripANSI(DeadlineStyled("2025-06-25", testNow)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Learn…", Truncate("Learning Go", 6))
}
