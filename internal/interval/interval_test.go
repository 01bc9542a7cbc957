package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC)
}

func span(start, end int) Span {
	return Span{Start: day(start), End: day(end)}
}

func TestOverlaps(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     Span
		expected bool
	}{
		{
			name:     "Partial overlap",
			a:        span(10, 15),
			b:        span(12, 18),
			expected: true,
		},
		{
			name:     "Containment",
			a:        span(10, 20),
			b:        span(12, 14),
			expected: true,
		},
		{
			name:     "Identical",
			a:        span(10, 15),
			b:        span(10, 15),
			expected: true,
		},
		{
			name:     "Touching endpoints do not overlap",
			a:        span(1, 5),
			b:        span(5, 10),
			expected: false,
		},
		{
			name:     "Touching endpoints reversed",
			a:        span(5, 10),
			b:        span(1, 5),
			expected: false,
		},
		{
			name:     "Disjoint",
			a:        span(1, 3),
			b:        span(7, 9),
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Overlaps(tc.a, tc.b))
			// Overlap is symmetric.
			assert.Equal(t, tc.expected, Overlaps(tc.b, tc.a))
		})
	}
}

func TestCovers(t *testing.T) {
	s := span(10, 15)
	assert.True(t, s.Covers(day(10)), "start instant is covered")
	assert.True(t, s.Covers(day(14)))
	assert.False(t, s.Covers(day(15)), "end instant is not covered")
	assert.False(t, s.Covers(day(9)))
}

func TestBreakpoints(t *testing.T) {
	testCases := []struct {
		name     string
		cand     Span
		others   []Span
		expected []time.Time
	}{
		{
			name:     "No others yields candidate start only",
			cand:     span(10, 15),
			others:   nil,
			expected: []time.Time{day(10)},
		},
		{
			name:     "Overlapping neighbour adds its start",
			cand:     span(10, 15),
			others:   []Span{span(12, 18)},
			expected: []time.Time{day(10), day(12)},
		},
		{
			name:     "Neighbour ending inside adds its end",
			cand:     span(10, 20),
			others:   []Span{span(8, 12), span(14, 16)},
			expected: []time.Time{day(10), day(12), day(14), day(16)},
		},
		{
			name:     "Duplicates collapse",
			cand:     span(10, 15),
			others:   []Span{span(12, 15), span(12, 15)},
			expected: []time.Time{day(10), day(12)},
		},
		{
			name:     "Points outside the candidate window are clipped",
			cand:     span(10, 15),
			others:   []Span{span(1, 5), span(15, 20)},
			expected: []time.Time{day(10)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Breakpoints(tc.cand, tc.others))
		})
	}
}
