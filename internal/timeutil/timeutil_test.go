package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunDateUsesKSTCalendarDay(t *testing.T) {
	// 2025-03-10 23:30 UTC is already 2025-03-11 in Seoul.
	utc := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-11", RunDate(utc))

	kst := time.Date(2025, 3, 10, 8, 0, 0, 0, KST)
	assert.Equal(t, "2025-03-10", RunDate(kst))
}

func TestFormatDateTime(t *testing.T) {
	at := time.Date(2025, 3, 10, 14, 5, 59, 0, KST)
	assert.Equal(t, "2025-03-10 14:05", FormatDateTime(at))
}

func TestFormatDateKorean(t *testing.T) {
	at := time.Date(2025, 3, 5, 9, 0, 0, 0, KST)
	assert.Equal(t, "2025년 03월 05일", FormatDate(at))
}

func TestLastDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, KST)
	w := LastDay(now)

	assert.Equal(t, now, w.End)
	assert.Equal(t, now.Add(-24*time.Hour), w.Start)
}

func TestWindowContainsBoundariesInclusive(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, KST)
	w := LastDay(now)

	at := func(tt time.Time) *time.Time { return &tt }

	assert.True(t, w.Contains(at(w.Start)))
	assert.True(t, w.Contains(at(w.End)))
	assert.True(t, w.Contains(at(now.Add(-12*time.Hour))))
	assert.False(t, w.Contains(at(w.Start.Add(-time.Second))))
	assert.False(t, w.Contains(at(w.End.Add(time.Second))))
	assert.False(t, w.Contains(nil))
}
