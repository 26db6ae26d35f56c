package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBoundaries(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	duration := 60 * time.Minute
	grace := 10 * time.Minute

	tests := []struct {
		name string
		now  time.Time
		want Classification
	}{
		{"one second before start", start.Add(-time.Second), NotStarted},
		{"exactly at start", start, Active},
		{"59 minutes in", start.Add(59 * time.Minute), Active},
		{"exactly at end", start.Add(60 * time.Minute), Active},
		{"61 minutes in", start.Add(61 * time.Minute), InGrace},
		{"exactly at grace end", start.Add(70 * time.Minute), InGrace},
		{"71 minutes 1 second in", start.Add(71*time.Minute + time.Second), Ended},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(start, duration, grace, tt.now)
			assert.Equal(t, tt.want, got.Classification)
		})
	}
}

func TestClassifyNotStartedBreakdown(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := start.Add(-(2*24*time.Hour + 3*time.Hour + 25*time.Minute))

	got := Classify(start, time.Hour, DefaultGrace, now)

	assert.Equal(t, NotStarted, got.Classification)
	assert.Equal(t, 2, got.DaysToStart)
	assert.Equal(t, 3, got.HoursToStart)
	assert.Equal(t, 25, got.MinutesToStart)
}

func TestClassifyGraceMinutesLeft(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	// 63 minutes in: 3 minutes into a 10-minute grace window.
	now := start.Add(63 * time.Minute)

	got := Classify(start, time.Hour, DefaultGrace, now)

	assert.Equal(t, InGrace, got.Classification)
	assert.Equal(t, 7, got.GraceMinutesLeft)
	assert.Equal(t, start.Add(time.Hour), got.End)
	assert.Equal(t, start.Add(70*time.Minute), got.GraceEnd)
}

func TestOpen(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.False(t, Classify(start, time.Hour, DefaultGrace, start.Add(-time.Minute)).Open())
	assert.True(t, Classify(start, time.Hour, DefaultGrace, start.Add(30*time.Minute)).Open())
	assert.True(t, Classify(start, time.Hour, DefaultGrace, start.Add(65*time.Minute)).Open())
	assert.False(t, Classify(start, time.Hour, DefaultGrace, start.Add(2*time.Hour)).Open())
}
