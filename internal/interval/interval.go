// Package interval implements half-open date-interval arithmetic for the
// room assignment engine. All intervals are [start, end): a checkout and a
// check-in on the same instant do not overlap.
package interval

import (
	"sort"
	"time"
)

// Span is a half-open time interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether a and b share at least one instant.
// Touching endpoints do not count as overlap.
func Overlaps(a, b Span) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Covers reports whether the span contains the instant t.
func (s Span) Covers(t time.Time) bool {
	return !s.Start.After(t) && s.End.After(t)
}

// Breakpoints returns the sorted, de-duplicated instants at which the
// occupancy of a room can change within the candidate span: the endpoints
// of the candidate and of every other span, clipped to [cand.Start,
// cand.End). Occupancy is piecewise constant between breakpoints, so
// sampling at these instants is exact.
func Breakpoints(cand Span, others []Span) []time.Time {
	points := make([]time.Time, 0, 2*len(others)+2)
	points = append(points, cand.Start, cand.End)
	for _, o := range others {
		points = append(points, o.Start, o.End)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })

	out := points[:0]
	for _, p := range points {
		if p.Before(cand.Start) || !p.Before(cand.End) {
			continue
		}
		if len(out) > 0 && out[len(out)-1].Equal(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
